package domain_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/asset"
)

func TestMapper_AddAndResolve(t *testing.T) {
	m := domain.NewMapper()

	usdcEth := asset.ChainAssetInfo{ChainID: asset.ChainIDEthereum, Address: asset.AddrUSDCEthereum, Decimals: 6}
	if err := m.AddMapping("USDC", usdcEth); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, ok := m.Canonical(asset.ChainIDEthereum, asset.AddrUSDCEthereum)
	if !ok || id != "USDC" {
		t.Fatalf("expected USDC, got %q ok=%v", id, ok)
	}
}

func TestMapper_RejectsConflictingMapping(t *testing.T) {
	m := domain.NewMapper()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	if err := m.AddMapping("USDC", asset.ChainAssetInfo{ChainID: 1, Address: addr, Decimals: 6}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddMapping("USDT", asset.ChainAssetInfo{ChainID: 1, Address: addr, Decimals: 6}); err == nil {
		t.Error("expected error remapping an already-mapped (chain, address) pair")
	}
}

func TestMapper_WrappedOfAndNativeOf(t *testing.T) {
	m := domain.DefaultMapper()

	wrapped, ok := m.WrappedOf("WETH")
	if !ok || wrapped != "ETH" {
		t.Fatalf("expected WETH wraps ETH, got %q ok=%v", wrapped, ok)
	}

	chainID, ok := m.NativeOf("ETH")
	if !ok || chainID != asset.ChainIDEthereum {
		t.Fatalf("expected ETH native on chain %d, got %d ok=%v", asset.ChainIDEthereum, chainID, ok)
	}
}

func TestMapper_CanonicalNative(t *testing.T) {
	m := domain.DefaultMapper()

	id, ok := m.CanonicalNative(asset.ChainIDPolygon)
	if !ok || id != "MATIC" {
		t.Fatalf("expected MATIC native on polygon, got %q ok=%v", id, ok)
	}
}

func TestMapper_Equivalents(t *testing.T) {
	m := domain.DefaultMapper()

	equivalents := m.Equivalents(asset.ChainIDEthereum, asset.AddrUSDCEthereum)
	if _, ok := equivalents[asset.ChainIDPolygon]; !ok {
		t.Error("expected USDC on ethereum to resolve an equivalent on polygon")
	}
	if _, ok := equivalents[asset.ChainIDArbitrum]; !ok {
		t.Error("expected USDC on ethereum to resolve an equivalent on arbitrum")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := map[string]string{
		"USDT":     "USDT", // exact suffix match without prefix is left alone
		"USDCUSDT": "USDC",
		"BUSDT":    "B",
		"ETH":      "ETH",
		"  eth  ":  "ETH",
	}
	for in, want := range cases {
		if got := domain.NormalizeSymbol(in); got != want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}
