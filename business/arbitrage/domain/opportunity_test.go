package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

func TestNewOpportunity_DerivesNetProfitAndMargin(t *testing.T) {
	cyc := domain.Cycle{}
	ts := time.Now()

	op := domain.NewOpportunity("op-1", "USDC", 1, 137, 1.0, 1.02,
		100, 10, 5, 1000, 30, 25, 0.9, cyc, ts)

	wantNet := 100.0 - 10.0 - 5.0
	if math.Abs(op.NetProfitUSD-wantNet) > 1e-9 {
		t.Fatalf("expected NetProfitUSD %v, got %v", wantNet, op.NetProfitUSD)
	}
	wantMargin := wantNet / 1000
	if math.Abs(op.ProfitMarginFrac-wantMargin) > 1e-9 {
		t.Fatalf("expected ProfitMarginFrac %v, got %v", wantMargin, op.ProfitMarginFrac)
	}
	if op.ID != "op-1" || op.Asset != "USDC" {
		t.Fatalf("unexpected identity fields: %+v", op)
	}
}

func TestNewOpportunity_ZeroNotionalYieldsZeroMargin(t *testing.T) {
	op := domain.NewOpportunity("op-2", "ETH", 1, 42, 1.0, 1.0,
		50, 5, 0, 0, 10, 10, 0.5, domain.Cycle{}, time.Now())

	if op.ProfitMarginFrac != 0 {
		t.Fatalf("expected zero margin for zero notional, got %v", op.ProfitMarginFrac)
	}
}

func TestOpportunity_IsProfitable(t *testing.T) {
	profitable := domain.NewOpportunity("a", "ETH", 1, 1, 1, 1, 100, 10, 10, 1000, 1, 1, 1, domain.Cycle{}, time.Now())
	if !profitable.IsProfitable() {
		t.Fatal("expected opportunity with positive net profit to be profitable")
	}

	unprofitable := domain.NewOpportunity("b", "ETH", 1, 1, 1, 1, 10, 10, 10, 1000, 1, 1, 1, domain.Cycle{}, time.Now())
	if unprofitable.IsProfitable() {
		t.Fatal("expected opportunity with zero net profit to not be profitable")
	}
}
