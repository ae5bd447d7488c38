package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/meridianfi/arbengine/business/market/app"
	"github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/logger"
)

type fakeSource struct {
	quotes []domain.SourceQuote
	sink   chan<- domain.SourceQuote
}

func (f *fakeSource) Start(ctx context.Context, sink chan<- domain.SourceQuote) error {
	f.sink = sink
	for _, q := range f.quotes {
		sink <- q
	}
	return nil
}
func (f *fakeSource) Stop() error { return nil }

// subscribeChan registers a subscriber before the aggregator starts, so
// no update can be missed to a scheduling race between Start and Subscribe.
func subscribeChan(agg *app.Aggregator, buffer int) <-chan domain.AssetPrice {
	ch := make(chan domain.AssetPrice, buffer)
	agg.Subscribe(func(p domain.AssetPrice) { ch <- p })
	return ch
}

func waitForUpdate(t *testing.T, ch <-chan domain.AssetPrice) domain.AssetPrice {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for aggregator to ingest a quote")
		return domain.AssetPrice{}
	}
}

func TestAggregator_IngestsValidQuoteIntoSnapshot(t *testing.T) {
	mapper := domain.NewMapper()
	agg := app.NewAggregator(mapper, app.AggregatorConfig{PriceValidationThreshold: 0.05}, logger.NewNop())

	source := &fakeSource{quotes: []domain.SourceQuote{
		{SourceID: "uniswap", AssetSymbol: "USDC", ChainID: 1, Price: 1.0, Liquidity: 500000, Timestamp: time.Now()},
	}}
	agg.RegisterSource(source)
	ch := subscribeChan(agg, 1)

	if err := agg.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error starting aggregator: %v", err)
	}
	defer agg.Stop()

	waitForUpdate(t, ch)

	snap := agg.Snapshot(time.Minute)
	found := false
	for k, v := range snap {
		if k.ChainID == 1 && v.Asset == "USDC" {
			found = true
			if v.Price != 1.0 {
				t.Errorf("expected price 1.0, got %v", v.Price)
			}
		}
	}
	if !found {
		t.Fatal("expected USDC@1 to appear in the snapshot")
	}
}

func TestAggregator_RejectsNonPositivePrice(t *testing.T) {
	mapper := domain.NewMapper()
	agg := app.NewAggregator(mapper, app.AggregatorConfig{}, logger.NewNop())

	source := &fakeSource{quotes: []domain.SourceQuote{
		{SourceID: "uniswap", AssetSymbol: "USDC", ChainID: 1, Price: 0, Timestamp: time.Now()},
	}}
	agg.RegisterSource(source)

	if err := agg.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer agg.Stop()

	// Give the ingest loop a moment; no subscriber fires for a rejected quote.
	time.Sleep(50 * time.Millisecond)

	snap := agg.Snapshot(time.Minute)
	if len(snap) != 0 {
		t.Fatalf("expected a non-positive-priced quote to be rejected, got %d entries", len(snap))
	}
}

func TestAggregator_Snapshot_ExcludesStaleEntries(t *testing.T) {
	mapper := domain.NewMapper()
	agg := app.NewAggregator(mapper, app.AggregatorConfig{}, logger.NewNop())

	source := &fakeSource{quotes: []domain.SourceQuote{
		{SourceID: "binance", AssetSymbol: "ETH", ChainID: 1, Price: 2000, Timestamp: time.Now().Add(-time.Hour)},
	}}
	agg.RegisterSource(source)
	ch := subscribeChan(agg, 1)

	if err := agg.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer agg.Stop()

	waitForUpdate(t, ch)

	snap := agg.Snapshot(time.Minute)
	if len(snap) != 0 {
		t.Fatalf("expected hour-old entry to be excluded by a 1-minute max age, got %d entries", len(snap))
	}
}

func TestAggregator_MultiSourceMergesSourceList(t *testing.T) {
	mapper := domain.NewMapper()
	agg := app.NewAggregator(mapper, app.AggregatorConfig{PriceValidationThreshold: 1.0}, logger.NewNop())

	source := &fakeSource{quotes: []domain.SourceQuote{
		{SourceID: "uniswap", AssetSymbol: "WETH", ChainID: 1, Price: 2000, Liquidity: 100000, Timestamp: time.Now()},
		{SourceID: "binance", AssetSymbol: "WETH", ChainID: 1, Price: 2001, Liquidity: 100000, Timestamp: time.Now()},
	}}
	agg.RegisterSource(source)
	ch := subscribeChan(agg, 2)

	if err := agg.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer agg.Stop()

	// Two quotes land; wait for both by draining twice.
	var last domain.AssetPrice
	for i := 0; i < 2; i++ {
		select {
		case last = <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for both quotes to be ingested")
		}
	}

	if len(last.Sources) < 1 {
		t.Fatalf("expected at least one contributing source recorded, got %v", last.Sources)
	}
}
