package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meridianfi/arbengine/internal/asset"
	"github.com/meridianfi/arbengine/internal/kvstore"
)

const customMappingIndexKey = "market:mapper:custom:index"

type customMappingRecord struct {
	CanonicalID asset.CanonicalAssetID
	Info        asset.ChainAssetInfo
}

func customMappingKey(info asset.ChainAssetInfo) string {
	return fmt.Sprintf("market:mapper:custom:%d:%s", info.ChainID, info.Address.Hex())
}

// AddCustomMapping registers a mapping the way AddMapping does, and also
// persists it to store so it survives a restart. A nil store degrades to
// AddMapping alone, for deployments that don't need warm-start.
func (m *Mapper) AddCustomMapping(ctx context.Context, store kvstore.KVStore, id asset.CanonicalAssetID, info asset.ChainAssetInfo) error {
	if err := m.AddMapping(id, info); err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	return m.persistMapping(ctx, store, id, info)
}

func (m *Mapper) persistMapping(ctx context.Context, store kvstore.KVStore, id asset.CanonicalAssetID, info asset.ChainAssetInfo) error {
	key := customMappingKey(info)

	data, err := json.Marshal(customMappingRecord{CanonicalID: id, Info: info})
	if err != nil {
		return fmt.Errorf("marshal custom mapping: %w", err)
	}
	if err := store.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("persist custom mapping: %w", err)
	}

	index, err := readIndex(ctx, store)
	if err != nil {
		return err
	}
	for _, existing := range index {
		if existing == key {
			return nil
		}
	}
	index = append(index, key)

	raw, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("marshal custom mapping index: %w", err)
	}
	if err := store.Set(ctx, customMappingIndexKey, raw, 0); err != nil {
		return fmt.Errorf("persist custom mapping index: %w", err)
	}
	return nil
}

// LoadCustomMappings replays every mapping previously persisted via
// AddCustomMapping, so a mapper built with DefaultMapper and then restored
// from store reflects the custom mappings a prior run accumulated.
func (m *Mapper) LoadCustomMappings(ctx context.Context, store kvstore.KVStore) error {
	if store == nil {
		return nil
	}

	index, err := readIndex(ctx, store)
	if err != nil {
		return err
	}

	for _, key := range index {
		data, err := store.Get(ctx, key)
		if errors.Is(err, kvstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load custom mapping %s: %w", key, err)
		}

		var rec customMappingRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("unmarshal custom mapping %s: %w", key, err)
		}
		if err := m.AddMapping(rec.CanonicalID, rec.Info); err != nil {
			return fmt.Errorf("replay custom mapping %s: %w", key, err)
		}
	}
	return nil
}

func readIndex(ctx context.Context, store kvstore.KVStore) ([]string, error) {
	raw, err := store.Get(ctx, customMappingIndexKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read custom mapping index: %w", err)
	}
	var index []string
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("unmarshal custom mapping index: %w", err)
	}
	return index, nil
}
