package domain_test

import (
	"testing"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func TestAllStrategies_FixedOrderAndCount(t *testing.T) {
	want := []domain.StrategyKind{
		domain.StrategyDirect,
		domain.StrategySplit,
		domain.StrategyDelayed,
		domain.StrategyPartial,
		domain.StrategyAggressive,
	}
	if len(domain.AllStrategies) != len(want) {
		t.Fatalf("expected %d strategies, got %d", len(want), len(domain.AllStrategies))
	}
	for i, s := range want {
		if domain.AllStrategies[i] != s {
			t.Errorf("strategy at index %d = %v, want %v", i, domain.AllStrategies[i], s)
		}
	}
}

func TestStrategyKind_String(t *testing.T) {
	if domain.StrategyDirect.String() != "direct" {
		t.Fatalf("expected \"direct\", got %q", domain.StrategyDirect.String())
	}
}
