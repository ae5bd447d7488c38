package domain

import "time"

// Opportunity is the profitability-level summary of one detected cycle,
// reduced to its dominant (source, target) chain/asset pair for display
// and gating even though its full route may span more than two hops.
type Opportunity struct {
	ID          string
	Asset       string // canonical asset symbol
	SourceChain uint64
	TargetChain uint64

	SourcePrice float64
	TargetPrice float64

	ExpectedProfitUSD float64
	EstGasCostUSD     float64
	BridgeFeeUSD      float64

	// NetProfitUSD must equal ExpectedProfitUSD - EstGasCostUSD - BridgeFeeUSD
	// within 1e-9 relative tolerance; NewOpportunity enforces this.
	NetProfitUSD      float64
	ProfitMarginFrac  float64 // NetProfitUSD / NotionalUSD
	NotionalUSD       float64
	ExecutionTimeS    float64
	RiskScore         float64 // 0..100, higher = riskier
	Confidence        float64 // 0..1

	Timestamp      time.Time
	Cycle          Cycle
	ExecutionPaths []ExecutionPath
}

// NewOpportunity builds an Opportunity from a costed cycle, deriving
// NetProfitUSD and ProfitMarginFrac so callers can never construct an
// inconsistent one by hand.
func NewOpportunity(id, asset string, sourceChain, targetChain uint64, sourcePrice, targetPrice float64, expectedProfit, gasCost, bridgeFee, notional, execTimeS, riskScore, confidence float64, cycle Cycle, ts time.Time) Opportunity {
	net := expectedProfit - gasCost - bridgeFee
	margin := 0.0
	if notional > 0 {
		margin = net / notional
	}
	return Opportunity{
		ID:                id,
		Asset:             asset,
		SourceChain:       sourceChain,
		TargetChain:       targetChain,
		SourcePrice:       sourcePrice,
		TargetPrice:       targetPrice,
		ExpectedProfitUSD: expectedProfit,
		EstGasCostUSD:     gasCost,
		BridgeFeeUSD:      bridgeFee,
		NetProfitUSD:      net,
		ProfitMarginFrac:  margin,
		NotionalUSD:       notional,
		ExecutionTimeS:    execTimeS,
		RiskScore:         riskScore,
		Confidence:        confidence,
		Timestamp:         ts,
		Cycle:             cycle,
	}
}

// IsProfitable reports whether net profit is positive.
func (o Opportunity) IsProfitable() bool {
	return o.NetProfitUSD > 0
}
