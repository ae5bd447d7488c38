package domain_test

import (
	"math"
	"testing"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func TestStepCost_Total(t *testing.T) {
	s := domain.StepCost{GasUSD: 1.5, BridgeUSD: 2.0, SlippageUSD: 0.25, TimeS: 30, MEVUSD: 0.1}
	got := s.Total()
	want := 1.5 + 2.0 + 0.25 + 0.1
	if got != want {
		t.Fatalf("expected total %v (excluding TimeS), got %v", want, got)
	}
}

func TestNewCostBreakdown_AggregatesSteps(t *testing.T) {
	steps := []domain.StepCost{
		{GasUSD: 1, BridgeUSD: 0, SlippageUSD: 0.5, TimeS: 10, MEVUSD: 0.1},
		{GasUSD: 2, BridgeUSD: 5, SlippageUSD: 1.0, TimeS: 120, MEVUSD: 0.2},
	}

	cb := domain.NewCostBreakdown(steps)

	if cb.TotalGasUSD != 3 {
		t.Errorf("expected TotalGasUSD 3, got %v", cb.TotalGasUSD)
	}
	if cb.TotalBridgeUSD != 5 {
		t.Errorf("expected TotalBridgeUSD 5, got %v", cb.TotalBridgeUSD)
	}
	if cb.TotalSlippageUSD != 1.5 {
		t.Errorf("expected TotalSlippageUSD 1.5, got %v", cb.TotalSlippageUSD)
	}
	if cb.TotalTimeS != 130 {
		t.Errorf("expected TotalTimeS 130, got %v", cb.TotalTimeS)
	}
	if math.Abs(cb.TotalMEVUSD-0.3) > 1e-9 {
		t.Errorf("expected TotalMEVUSD 0.3, got %v", cb.TotalMEVUSD)
	}
	if len(cb.Steps) != 2 {
		t.Errorf("expected 2 steps preserved, got %d", len(cb.Steps))
	}
}

func TestCostBreakdown_TotalUSD(t *testing.T) {
	cb := domain.NewCostBreakdown([]domain.StepCost{
		{GasUSD: 1, BridgeUSD: 2, SlippageUSD: 3, MEVUSD: 4},
	})
	if got, want := cb.TotalUSD(), 10.0; got != want {
		t.Fatalf("expected TotalUSD %v, got %v", want, got)
	}
}

func TestNewCostBreakdown_EmptySteps(t *testing.T) {
	cb := domain.NewCostBreakdown(nil)
	if cb.TotalUSD() != 0 {
		t.Fatalf("expected zero total for empty steps, got %v", cb.TotalUSD())
	}
	if len(cb.Steps) != 0 {
		t.Fatalf("expected no steps, got %d", len(cb.Steps))
	}
}
