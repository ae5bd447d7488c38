// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/meridianfi/arbengine/business/market/app"
	"github.com/meridianfi/arbengine/business/market/domain"
	internalDI "github.com/meridianfi/arbengine/internal/di"
	"github.com/meridianfi/arbengine/internal/kvstore"
)

// DI tokens for the market module.
const (
	Mapper      = "market.Mapper"
	Aggregator  = "market.Aggregator"
	MapperStore = "market.MapperStore"
)

// GetMapper retrieves the canonical-asset mapper from the registry.
func GetMapper(sr internalDI.ServiceRegistry) *domain.Mapper {
	return internalDI.MustGet[*domain.Mapper](sr, Mapper)
}

// GetAggregator retrieves the cross-chain price aggregator from the registry.
func GetAggregator(sr internalDI.ServiceRegistry) *app.Aggregator {
	return internalDI.MustGet[*app.Aggregator](sr, Aggregator)
}

// GetMapperStore retrieves the mapper's warm-start persistence store.
func GetMapperStore(sr internalDI.ServiceRegistry) kvstore.KVStore {
	return internalDI.MustGet[kvstore.KVStore](sr, MapperStore)
}
