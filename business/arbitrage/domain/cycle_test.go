package domain_test

import (
	"testing"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func nodesABC() (a, b, c domain.Node) {
	return domain.Node{ChainID: 1, Asset: "A"},
		domain.Node{ChainID: 1, Asset: "B"},
		domain.Node{ChainID: 1, Asset: "C"}
}

func TestCycle_Length(t *testing.T) {
	a, b, c := nodesABC()
	cyc := domain.Cycle{
		Path:  []domain.Node{a, b, c},
		Edges: []domain.Edge{{From: a, To: b}, {From: b, To: c}, {From: c, To: a}},
	}
	if cyc.Length() != 3 {
		t.Fatalf("expected length 3, got %d", cyc.Length())
	}
}

func TestCycle_KeyStableUnderRotation(t *testing.T) {
	a, b, c := nodesABC()

	rotated := domain.Cycle{Path: []domain.Node{b, c, a}}
	original := domain.Cycle{Path: []domain.Node{a, b, c}}

	if original.Key() != rotated.Key() {
		t.Fatalf("expected rotation to produce same key: %q vs %q", original.Key(), rotated.Key())
	}
}

func TestCycle_KeyDiffersByDirection(t *testing.T) {
	a, b, c := nodesABC()

	forward := domain.Cycle{Path: []domain.Node{a, b, c}}
	reverse := domain.Cycle{Path: []domain.Node{a, c, b}}

	if forward.Key() == reverse.Key() {
		t.Fatal("expected reversed cycle to produce a different key")
	}
}

func TestCycle_KeyEmptyPath(t *testing.T) {
	cyc := domain.Cycle{}
	if cyc.Key() != "" {
		t.Fatalf("expected empty key for empty path, got %q", cyc.Key())
	}
}

func TestDedupeCycles_KeepsFirstOccurrence(t *testing.T) {
	a, b, c := nodesABC()

	first := domain.Cycle{Path: []domain.Node{a, b, c}, ProfitMargin: 0.02, DetectedAt: time.Now()}
	rotatedDup := domain.Cycle{Path: []domain.Node{b, c, a}, ProfitMargin: 0.01}

	out := domain.DedupeCycles([]domain.Cycle{first, rotatedDup})
	if len(out) != 1 {
		t.Fatalf("expected 1 deduped cycle, got %d", len(out))
	}
	if out[0].ProfitMargin != 0.02 {
		t.Fatalf("expected the first occurrence to survive, got profit margin %v", out[0].ProfitMargin)
	}
}

func TestDedupeCycles_KeepsDistinctCycles(t *testing.T) {
	a, b, c := nodesABC()

	cyc1 := domain.Cycle{Path: []domain.Node{a, b, c}}
	cyc2 := domain.Cycle{Path: []domain.Node{a, c, b}}

	out := domain.DedupeCycles([]domain.Cycle{cyc1, cyc2})
	if len(out) != 2 {
		t.Fatalf("expected 2 distinct cycles to survive dedup, got %d", len(out))
	}
}
