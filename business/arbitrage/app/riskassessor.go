package app

import (
	"math"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

// RiskAssessorConfig exposes the per-chain and per-contract risk
// multipliers the teacher's reference buries as constants.
type RiskAssessorConfig struct {
	ChainBaseRiskMultiplier map[uint64]float64 // Ethereum ~1.0, newer chains up to ~1.5
	KnownRiskyContracts     map[string]bool
	KnownSafeProtocols      map[string]bool
	GovernanceRiskFloor     float64 // default 5
}

// DefaultRiskAssessorConfig returns sensible per-chain multipliers.
func DefaultRiskAssessorConfig() RiskAssessorConfig {
	return RiskAssessorConfig{
		ChainBaseRiskMultiplier: map[uint64]float64{
			1:     1.0,  // Ethereum
			137:   1.2,  // Polygon
			42161: 1.15, // Arbitrum
			10:    1.15, // Optimism
			8453:  1.2,  // Base
			56:    1.3,  // BSC
			250:   1.5,  // Fantom
		},
		KnownSafeProtocols:  map[string]bool{"uniswap-v3": true},
		GovernanceRiskFloor: 5,
	}
}

// RiskAssessor scores market / execution / liquidity / MEV / technical /
// counterparty risk into a 0..100 composite.
type RiskAssessor struct {
	config RiskAssessorConfig
}

// NewRiskAssessor creates a RiskAssessor.
func NewRiskAssessor(cfg RiskAssessorConfig) *RiskAssessor {
	return &RiskAssessor{config: cfg}
}

// PriceHistoryPoint is one recent observation used for volatility.
type PriceHistoryPoint struct {
	Price float64
}

// Assess composes the six risk sub-scores for one candidate path.
func (r *RiskAssessor) Assess(cycle domain.Cycle, path domain.ExecutionPath, priceHistory []PriceHistoryPoint, bestPoolLiquidity float64, venueLiquidity map[string]float64) domain.RiskAssessment {
	market := r.marketRisk(priceHistory, path.NotionalUSD, bestPoolLiquidity, cycle)
	execution := r.executionRisk(cycle, path)
	liquidity := r.liquidityRisk(bestPoolLiquidity, venueLiquidity, path.Costs.TotalSlippageUSD, path.NotionalUSD)
	mev := r.mevRisk(path)
	technical := r.technicalRisk(cycle)
	counterparty := r.counterpartyRisk(cycle)

	var notes []string
	if market > 60 {
		notes = append(notes, "elevated realized volatility across the path's assets")
	}
	if counterparty > 60 {
		notes = append(notes, "multiple bridge hops increase counterparty exposure")
	}

	return domain.NewRiskAssessment(market, execution, liquidity, mev, technical, counterparty, notes)
}

func (r *RiskAssessor) marketRisk(history []PriceHistoryPoint, notionalUSD, liquidity float64, cycle domain.Cycle) float64 {
	volatility := annualizedVolatility(history)
	priceImpact := math.Min(0.1, safeDiv(notionalUSD, liquidity))

	correlation := 20.0 // same-chain baseline
	for i := 1; i < len(cycle.Path); i++ {
		if cycle.Path[i].ChainID != cycle.Path[i-1].ChainID {
			correlation = 45.0 // cross-chain correlation risk is higher
			break
		}
	}

	return clamp(volatility*100*0.5+priceImpact*1000*0.3+correlation*0.2, 0, 100)
}

func annualizedVolatility(history []PriceHistoryPoint) float64 {
	if len(history) < 2 {
		return 0.2 // no history: assume moderate volatility
	}
	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		if history[i-1].Price <= 0 || history[i].Price <= 0 {
			continue
		}
		returns = append(returns, math.Log(history[i].Price/history[i-1].Price))
	}
	_, stdev := meanStdev(returns)
	const periodsPerYear = 365.0
	return stdev * math.Sqrt(periodsPerYear)
}

func (r *RiskAssessor) executionRisk(cycle domain.Cycle, path domain.ExecutionPath) float64 {
	stepScore := math.Min(100, float64(cycle.Length())*15)
	timeScore := math.Min(100, cycle.ExecutionTimeS/2)
	gasToProfitRatio := 0.0
	if path.ExpectedProfitUSD > 0 {
		gasToProfitRatio = math.Min(1, path.Costs.TotalGasUSD/path.ExpectedProfitUSD)
	}
	return clamp(stepScore*0.4+timeScore*0.3+gasToProfitRatio*100*0.3, 0, 100)
}

func (r *RiskAssessor) liquidityRisk(bestPoolLiquidity float64, venueLiquidity map[string]float64, slippageUSD, notionalUSD float64) float64 {
	depthScore := 100.0
	if bestPoolLiquidity > 0 {
		depthScore = clamp(100-math.Min(100, bestPoolLiquidity/10_000), 0, 100)
	}

	herfindahl := herfindahlIndex(venueLiquidity)
	slippageFrac := safeDiv(slippageUSD, notionalUSD)

	return clamp(depthScore*0.4+herfindahl*100*0.3+slippageFrac*1000*0.3, 0, 100)
}

func herfindahlIndex(venueLiquidity map[string]float64) float64 {
	var total float64
	for _, v := range venueLiquidity {
		total += v
	}
	if total == 0 {
		return 1 // fully concentrated when unknown
	}
	var hhi float64
	for _, v := range venueLiquidity {
		share := v / total
		hhi += share * share
	}
	return hhi
}

func (r *RiskAssessor) mevRisk(path domain.ExecutionPath) float64 {
	if path.Costs.TotalMEVUSD == 0 || path.ExpectedProfitUSD == 0 {
		return 0
	}
	frac := path.Costs.TotalMEVUSD / path.ExpectedProfitUSD
	return clamp(frac*100, 0, 100)
}

func (r *RiskAssessor) technicalRisk(cycle domain.Cycle) float64 {
	var maxMultiplier float64 = 1.0
	for _, n := range cycle.Path {
		if m, ok := r.config.ChainBaseRiskMultiplier[n.ChainID]; ok && m > maxMultiplier {
			maxMultiplier = m
		}
	}

	risky := 0
	for _, e := range cycle.Edges {
		if r.config.KnownRiskyContracts[e.VenueID] {
			risky++
		}
	}

	base := (maxMultiplier - 1.0) * 100
	return clamp(base+float64(risky)*15, 0, 100)
}

func (r *RiskAssessor) counterpartyRisk(cycle domain.Cycle) float64 {
	bridgeHops := 0
	unsafe := 0
	for _, e := range cycle.Edges {
		if e.Kind == domain.EdgeKindBridge {
			bridgeHops++
			if !r.config.KnownSafeProtocols[e.VenueID] {
				unsafe++
			}
		}
	}
	return clamp(r.config.GovernanceRiskFloor+float64(bridgeHops)*15+float64(unsafe)*10, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
