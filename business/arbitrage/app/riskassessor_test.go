package app_test

import (
	"testing"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func TestRiskAssessor_Assess_ReturnsBandedComposite(t *testing.T) {
	assessor := app.NewRiskAssessor(app.DefaultRiskAssessorConfig())

	cyc := swapCycle()
	path := domain.ExecutionPath{
		Cycle:             cyc,
		NotionalUSD:       1000,
		ExpectedProfitUSD: 50,
		Costs: domain.CostBreakdown{
			TotalGasUSD:      5,
			TotalSlippageUSD: 2,
			TotalMEVUSD:      1,
		},
	}

	ra := assessor.Assess(cyc, path, nil, 500000, map[string]float64{"pool-a": 1_000_000})

	if ra.OverallRisk < 0 || ra.OverallRisk > 100 {
		t.Fatalf("expected overall risk in [0,100], got %v", ra.OverallRisk)
	}
	if ra.Band != domain.BandForRiskScore(ra.OverallRisk) {
		t.Fatalf("expected band to match BandForRiskScore(overall), got %v for score %v", ra.Band, ra.OverallRisk)
	}
}

func TestRiskAssessor_CrossChainCycleScoresHigherMarketRisk(t *testing.T) {
	assessor := app.NewRiskAssessor(app.DefaultRiskAssessorConfig())

	sameChain := domain.Cycle{Path: []domain.Node{
		{ChainID: 1, Asset: "A"}, {ChainID: 1, Asset: "B"}, {ChainID: 1, Asset: "C"},
	}}
	crossChain := domain.Cycle{Path: []domain.Node{
		{ChainID: 1, Asset: "A"}, {ChainID: 137, Asset: "A"}, {ChainID: 1, Asset: "B"},
	}}

	path := domain.ExecutionPath{NotionalUSD: 1000, ExpectedProfitUSD: 50}

	sameRisk := assessor.Assess(sameChain, path, nil, 1_000_000, nil)
	crossRisk := assessor.Assess(crossChain, path, nil, 1_000_000, nil)

	if crossRisk.MarketRisk <= sameRisk.MarketRisk {
		t.Fatalf("expected a cross-chain cycle to score higher market risk (%v) than a same-chain one (%v)",
			crossRisk.MarketRisk, sameRisk.MarketRisk)
	}
}

func TestRiskAssessor_BridgeHopsRaiseCounterpartyRisk(t *testing.T) {
	assessor := app.NewRiskAssessor(app.DefaultRiskAssessorConfig())

	a := domain.Node{ChainID: 1, Asset: "A"}
	b := domain.Node{ChainID: 137, Asset: "A"}

	noBridge := domain.Cycle{Edges: []domain.Edge{{From: a, To: b, Kind: domain.EdgeKindSwap}}}
	unsafeBridge := domain.Cycle{Edges: []domain.Edge{{From: a, To: b, Kind: domain.EdgeKindBridge, VenueID: "sketchy-bridge"}}}

	path := domain.ExecutionPath{NotionalUSD: 1000, ExpectedProfitUSD: 50}

	base := assessor.Assess(noBridge, path, nil, 1_000_000, nil)
	withBridge := assessor.Assess(unsafeBridge, path, nil, 1_000_000, nil)

	if withBridge.CounterpartyRisk <= base.CounterpartyRisk {
		t.Fatalf("expected an unsafe bridge hop to raise counterparty risk above the floor: %v vs %v",
			withBridge.CounterpartyRisk, base.CounterpartyRisk)
	}
}

func TestRiskAssessor_KnownSafeProtocolLowersCounterpartyRisk(t *testing.T) {
	cfg := app.DefaultRiskAssessorConfig()
	assessor := app.NewRiskAssessor(cfg)

	a := domain.Node{ChainID: 1, Asset: "A"}
	b := domain.Node{ChainID: 137, Asset: "A"}

	safeBridge := domain.Cycle{Edges: []domain.Edge{{From: a, To: b, Kind: domain.EdgeKindBridge, VenueID: "uniswap-v3"}}}
	unsafeBridge := domain.Cycle{Edges: []domain.Edge{{From: a, To: b, Kind: domain.EdgeKindBridge, VenueID: "unknown-bridge"}}}

	path := domain.ExecutionPath{NotionalUSD: 1000, ExpectedProfitUSD: 50}

	safeRisk := assessor.Assess(safeBridge, path, nil, 1_000_000, nil)
	unsafeRisk := assessor.Assess(unsafeBridge, path, nil, 1_000_000, nil)

	if safeRisk.CounterpartyRisk >= unsafeRisk.CounterpartyRisk {
		t.Fatalf("expected a known-safe protocol to score lower counterparty risk: %v vs %v",
			safeRisk.CounterpartyRisk, unsafeRisk.CounterpartyRisk)
	}
}

func TestRiskAssessor_ZeroExpectedProfitYieldsZeroMEVRisk(t *testing.T) {
	assessor := app.NewRiskAssessor(app.DefaultRiskAssessorConfig())
	cyc := swapCycle()
	path := domain.ExecutionPath{NotionalUSD: 1000, ExpectedProfitUSD: 0, Costs: domain.CostBreakdown{TotalMEVUSD: 10}}

	ra := assessor.Assess(cyc, path, nil, 1_000_000, nil)
	if ra.MEVRisk != 0 {
		t.Fatalf("expected zero MEV risk when expected profit is zero, got %v", ra.MEVRisk)
	}
}
