package domain_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/meridianfi/arbengine/business/market/domain"
	"github.com/meridianfi/arbengine/internal/asset"
	"github.com/meridianfi/arbengine/internal/kvstore"
)

func TestMapper_AddCustomMapping_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewInMemory()

	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	info := asset.ChainAssetInfo{ChainID: asset.ChainIDArbitrum, Address: addr, Decimals: 18}

	m := domain.NewMapper()
	if err := m.AddCustomMapping(ctx, store, "CUSTOM", info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh mapper with no in-memory knowledge of the mapping should pick
	// it up from store.
	restored := domain.NewMapper()
	if err := restored.LoadCustomMappings(ctx, store); err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}

	id, ok := restored.Canonical(asset.ChainIDArbitrum, addr)
	if !ok || id != "CUSTOM" {
		t.Fatalf("expected CUSTOM, got %q ok=%v", id, ok)
	}
}

func TestMapper_AddCustomMapping_NilStoreDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	addr := common.HexToAddress("0x3333333333333333333333333333333333333333")

	m := domain.NewMapper()
	if err := m.AddCustomMapping(ctx, nil, "CUSTOM", asset.ChainAssetInfo{ChainID: 1, Address: addr, Decimals: 18}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := m.Canonical(1, addr); !ok {
		t.Error("expected mapping to still be registered in-memory")
	}
}

func TestMapper_LoadCustomMappings_EmptyStore(t *testing.T) {
	m := domain.NewMapper()
	if err := m.LoadCustomMappings(context.Background(), kvstore.NewInMemory()); err != nil {
		t.Fatalf("unexpected error loading from empty store: %v", err)
	}
}
