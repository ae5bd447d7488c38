package app_test

import (
	"context"
	"math"
	"testing"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func swapCycle() domain.Cycle {
	a := domain.Node{ChainID: 1, Asset: "USDC"}
	b := domain.Node{ChainID: 1, Asset: "WETH"}
	c := domain.Node{ChainID: 1, Asset: "DAI"}
	return domain.Cycle{
		Path: []domain.Node{a, b, c},
		Edges: []domain.Edge{
			{From: a, To: b, Kind: domain.EdgeKindSwap},
			{From: b, To: c, Kind: domain.EdgeKindSwap},
			{From: c, To: a, Kind: domain.EdgeKindSwap},
		},
		ExecutionTimeS: 45,
	}
}

func TestCostCalculators_Gas(t *testing.T) {
	chains := &fakeChainAdapter{
		available: map[uint64]bool{1: true},
		gas:       app.GasQuote{PriceWeiPerGas: 30e9},
		nativeUSD: 2000,
	}
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), chains)

	costs, total := calc.Gas(context.Background(), swapCycle())
	if len(costs) != 3 {
		t.Fatalf("expected 3 per-step costs, got %d", len(costs))
	}
	for i, c := range costs {
		if c <= 0 {
			t.Errorf("expected positive gas cost at step %d, got %v", i, c)
		}
	}
	var sum float64
	for _, c := range costs {
		sum += c
	}
	if math.Abs(sum-total) > 1e-9 {
		t.Errorf("expected total to equal sum of steps, got total=%v sum=%v", total, sum)
	}
}

func TestCostCalculators_GasSkipsBridgeSteps(t *testing.T) {
	chains := &fakeChainAdapter{
		available: map[uint64]bool{1: true, 137: true},
		gas:       app.GasQuote{PriceWeiPerGas: 30e9},
		nativeUSD: 2000,
	}
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), chains)

	a := domain.Node{ChainID: 1, Asset: "USDC"}
	b := domain.Node{ChainID: 137, Asset: "USDC"}
	cyc := domain.Cycle{
		Path:  []domain.Node{a, b},
		Edges: []domain.Edge{{From: a, To: b, Kind: domain.EdgeKindBridge}},
	}

	costs, total := calc.Gas(context.Background(), cyc)
	if total != 0 || costs[0] != 0 {
		t.Fatalf("expected zero gas cost for a bridge-only cycle, got total=%v costs=%v", total, costs)
	}
}

func TestCostCalculators_Bridge_ClampsToMinMax(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})

	a := domain.Node{ChainID: 1, Asset: "USDC"}
	b := domain.Node{ChainID: 137, Asset: "USDC"}
	cyc := domain.Cycle{Edges: []domain.Edge{{From: a, To: b, Kind: domain.EdgeKindBridge}}}

	// notional * pct would exceed Max; expect clamp down.
	fees := map[int]domain.BridgeFeeInput{0: {Base: 1, Percentage: 0.01, Min: 1, Max: 5}}
	costs, total := calc.Bridge(cyc, 10000, fees)
	if costs[0] != 5 || total != 5 {
		t.Fatalf("expected fee clamped to Max=5, got cost=%v total=%v", costs[0], total)
	}

	// notional * pct would be below Min; expect clamp up.
	fees = map[int]domain.BridgeFeeInput{0: {Base: 0, Percentage: 0.0001, Min: 2, Max: 100}}
	costs, total = calc.Bridge(cyc, 1, fees)
	if costs[0] != 2 || total != 2 {
		t.Fatalf("expected fee clamped to Min=2, got cost=%v total=%v", costs[0], total)
	}
}

func TestCostCalculators_Slippage_DefaultFraction(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})

	costs, total := calc.Slippage(swapCycle(), 1000, nil)
	for _, c := range costs {
		if math.Abs(c-5.0) > 1e-9 { // 1000 * 0.005 default
			t.Errorf("expected default slippage cost 5.0 per step, got %v", c)
		}
	}
	if math.Abs(total-15.0) > 1e-9 {
		t.Errorf("expected total slippage 15.0, got %v", total)
	}
}

func TestCostCalculators_Slippage_PerStepOverride(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})

	costs, _ := calc.Slippage(swapCycle(), 1000, map[int]float64{0: 0.02})
	if math.Abs(costs[0]-20.0) > 1e-9 {
		t.Errorf("expected overridden slippage 20.0 at step 0, got %v", costs[0])
	}
	if math.Abs(costs[1]-5.0) > 1e-9 {
		t.Errorf("expected default slippage 5.0 at step 1, got %v", costs[1])
	}
}

func TestCostCalculators_Time(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})
	cyc := domain.Cycle{ExecutionTimeS: 60}
	got := calc.Time(cyc, 500)
	want := 60 * 0.001 * 500.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected time cost %v, got %v", want, got)
	}
}

func TestCostCalculators_MEV_ClampedToRange(t *testing.T) {
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), &fakeChainAdapter{})

	// Large slippage fraction and tiny liquidity should push sandwich
	// cost high, clamped at 0.9 of gross profit.
	mev := calc.MEV(1000, 1000, 30, 0.5, 1)
	if mev > 0.9*1000+1e-9 {
		t.Fatalf("expected MEV cost clamped to 90%% of gross profit, got %v", mev)
	}
	if mev < 0 {
		t.Fatalf("expected non-negative MEV cost, got %v", mev)
	}
}

func TestCostCalculators_Compose_AssignsMEVToLastStep(t *testing.T) {
	chains := &fakeChainAdapter{
		available: map[uint64]bool{1: true},
		gas:       app.GasQuote{PriceWeiPerGas: 30e9},
		nativeUSD: 2000,
	}
	calc := app.NewCostCalculators(app.DefaultCostCalculatorConfig(), chains)

	cb := calc.Compose(context.Background(), swapCycle(), 1000, 50, nil, 30, 1_000_000, 0)

	if len(cb.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(cb.Steps))
	}
	for i := 0; i < 2; i++ {
		if cb.Steps[i].MEVUSD != 0 {
			t.Errorf("expected MEV cost zero on non-final step %d, got %v", i, cb.Steps[i].MEVUSD)
		}
	}
	if cb.Steps[2].MEVUSD <= 0 {
		t.Error("expected MEV cost on the final step")
	}
	if len(cb.OptimizationPotential) != 5 {
		t.Fatalf("expected 5 optimization hints (one per calculator), got %d", len(cb.OptimizationPotential))
	}
}
