package app_test

import (
	"context"
	"testing"

	"github.com/meridianfi/arbengine/business/chain/app"
	marketApp "github.com/meridianfi/arbengine/business/market/app"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/logger"
)

func newUnconfiguredAdapter() *app.MultiChainAdapter {
	mapper := marketDomain.NewMapper()
	agg := marketApp.NewAggregator(mapper, marketApp.AggregatorConfig{}, logger.NewNop())
	return app.NewMultiChainAdapter(mapper, agg, logger.NewNop())
}

func TestMultiChainAdapter_CurrentGasPrice_UnconfiguredChainErrors(t *testing.T) {
	adapter := newUnconfiguredAdapter()
	if _, err := adapter.CurrentGasPrice(context.Background(), 1); err == nil {
		t.Fatal("expected an error for an unconfigured chain")
	}
}

func TestMultiChainAdapter_BlockNumber_UnconfiguredChainErrors(t *testing.T) {
	adapter := newUnconfiguredAdapter()
	if _, err := adapter.BlockNumber(context.Background(), 1); err == nil {
		t.Fatal("expected an error for an unconfigured chain")
	}
}

func TestMultiChainAdapter_EstimateGas_UnconfiguredChainErrors(t *testing.T) {
	adapter := newUnconfiguredAdapter()
	if _, err := adapter.EstimateGas(context.Background(), 1, "swap"); err == nil {
		t.Fatal("expected an error for an unconfigured chain")
	}
}

func TestMultiChainAdapter_NativeTokenUSD_UnmappedChainErrors(t *testing.T) {
	adapter := newUnconfiguredAdapter()
	if _, err := adapter.NativeTokenUSD(context.Background(), 999); err == nil {
		t.Fatal("expected an error for a chain with no native-asset mapping")
	}
}

func TestMultiChainAdapter_Available_UnconfiguredChainIsFalse(t *testing.T) {
	adapter := newUnconfiguredAdapter()
	if adapter.Available(1) {
		t.Fatal("expected an unconfigured chain to report unavailable")
	}
}
