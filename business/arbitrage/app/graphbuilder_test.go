package app_test

import (
	"context"
	"testing"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/logger"
)

type fakeChainAdapter struct {
	available map[uint64]bool
	gas       app.GasQuote
	nativeUSD float64
}

func (f *fakeChainAdapter) CurrentGasPrice(ctx context.Context, chainID uint64) (app.GasQuote, error) {
	return f.gas, nil
}
func (f *fakeChainAdapter) BlockNumber(ctx context.Context, chainID uint64) (uint64, error) {
	return 1, nil
}
func (f *fakeChainAdapter) EstimateGas(ctx context.Context, chainID uint64, txKind string) (uint64, error) {
	return 180000, nil
}
func (f *fakeChainAdapter) NativeTokenUSD(ctx context.Context, chainID uint64) (float64, error) {
	return f.nativeUSD, nil
}
func (f *fakeChainAdapter) Available(chainID uint64) bool {
	return f.available[chainID]
}

type fakeBridgeCatalog struct {
	bridges []marketDomain.BridgeConfig
}

func (f *fakeBridgeCatalog) Bridges(from, to uint64) []marketDomain.BridgeConfig {
	var out []marketDomain.BridgeConfig
	for _, b := range f.bridges {
		if b.Supports(from, to) {
			out = append(out, b)
		}
	}
	return out
}
func (f *fakeBridgeCatalog) FeeEstimate(bridge marketDomain.BridgeConfig, amountUSD float64) float64 {
	return bridge.Fee.Estimate(amountUSD)
}

func TestGraphBuilder_BuildsSwapEdgesWithinAChain(t *testing.T) {
	chains := &fakeChainAdapter{
		available: map[uint64]bool{1: true},
		gas:       app.GasQuote{PriceWeiPerGas: 30e9},
		nativeUSD: 2000,
	}
	bridges := &fakeBridgeCatalog{}

	cfg := app.GraphBuilderConfig{SwapVenuesPerChain: map[uint64][]string{1: {"testdex"}}, TypicalSwapTimeS: 15}
	builder := app.NewGraphBuilder(nil, chains, bridges, cfg, logger.NewNop())

	prices := map[marketDomain.PriceKey]marketDomain.AssetPrice{
		{ChainID: 1, Asset: "USDC"}: {Asset: "USDC", ChainID: 1, Price: 1.0, Liquidity: 100000},
		{ChainID: 1, Asset: "WETH"}: {Asset: "WETH", ChainID: 1, Price: 2000, Liquidity: 500000},
	}

	g := builder.Build(context.Background(), prices)

	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("expected 2 swap edges (one per direction), got %d", g.EdgeCount())
	}
	for _, n := range g.Nodes {
		for _, e := range g.EdgesFrom(n) {
			if e.CostTimeS != 15 {
				t.Errorf("expected swap edge CostTimeS to carry TypicalSwapTimeS (15), got %v", e.CostTimeS)
			}
		}
	}
}

func TestGraphBuilder_OmitsUnavailableChain(t *testing.T) {
	chains := &fakeChainAdapter{available: map[uint64]bool{1: false}}
	bridges := &fakeBridgeCatalog{}

	builder := app.NewGraphBuilder(nil, chains, bridges, app.GraphBuilderConfig{}, logger.NewNop())

	prices := map[marketDomain.PriceKey]marketDomain.AssetPrice{
		{ChainID: 1, Asset: "USDC"}: {Asset: "USDC", ChainID: 1, Price: 1.0, Liquidity: 100000},
	}

	g := builder.Build(context.Background(), prices)
	if !g.IsEmpty() {
		t.Fatalf("expected an unavailable chain's prices to be omitted, got %d nodes", g.NodeCount())
	}
}

func TestGraphBuilder_OmitsNonPositivePrices(t *testing.T) {
	chains := &fakeChainAdapter{available: map[uint64]bool{1: true}}
	bridges := &fakeBridgeCatalog{}

	builder := app.NewGraphBuilder(nil, chains, bridges, app.GraphBuilderConfig{}, logger.NewNop())

	prices := map[marketDomain.PriceKey]marketDomain.AssetPrice{
		{ChainID: 1, Asset: "USDC"}: {Asset: "USDC", ChainID: 1, Price: 0, Liquidity: 100000},
		{ChainID: 1, Asset: "DAI"}:  {Asset: "DAI", ChainID: 1, Price: -1, Liquidity: 100000},
	}

	g := builder.Build(context.Background(), prices)
	if !g.IsEmpty() {
		t.Fatalf("expected zero/negative-priced assets to be omitted, got %d nodes", g.NodeCount())
	}
}

func TestGraphBuilder_BuildsBridgeEdgesAcrossChains(t *testing.T) {
	chains := &fakeChainAdapter{available: map[uint64]bool{1: true, 137: true}}
	bridges := &fakeBridgeCatalog{bridges: []marketDomain.BridgeConfig{
		{
			ID:                   "bridge:polygon-pos",
			SupportedChains:      []uint64{1, 137},
			Fee:                  marketDomain.BridgeFee{Base: 1, Percentage: 0.001, Min: 1, Max: 50},
			AvgProcessingSeconds: 600,
		},
	}}

	builder := app.NewGraphBuilder(nil, chains, bridges, app.GraphBuilderConfig{}, logger.NewNop())

	prices := map[marketDomain.PriceKey]marketDomain.AssetPrice{
		{ChainID: 1, Asset: "USDC"}:   {Asset: "USDC", ChainID: 1, Price: 1.0, Liquidity: 100000},
		{ChainID: 137, Asset: "USDC"}: {Asset: "USDC", ChainID: 137, Price: 0.999, Liquidity: 80000},
	}

	g := builder.Build(context.Background(), prices)

	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes (same asset, two chains), got %d", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("expected 2 bridge edges (one per direction), got %d", g.EdgeCount())
	}
	for _, n := range g.Nodes {
		for _, e := range g.EdgesFrom(n) {
			if e.Kind != "bridge" {
				t.Errorf("expected a bridge edge between chains, got kind %q", e.Kind)
			}
			if e.CostTimeS != 600 {
				t.Errorf("expected bridge edge CostTimeS to carry AvgProcessingSeconds (600), got %v", e.CostTimeS)
			}
		}
	}
}
