// Package di contains dependency injection tokens for the chain context.
package di

import (
	arbitrageApp "github.com/meridianfi/arbengine/business/arbitrage/app"
	chainApp "github.com/meridianfi/arbengine/business/chain/app"
	internalDI "github.com/meridianfi/arbengine/internal/di"
)

// DI tokens for the chain module.
const (
	ChainAdapter  = "chain.ChainAdapter"
	BridgeCatalog = "chain.BridgeCatalog"
)

// GetChainAdapter retrieves the multi-chain adapter from the registry,
// typed as the arbitrage context's ChainAdapter port.
func GetChainAdapter(sr internalDI.ServiceRegistry) arbitrageApp.ChainAdapter {
	return internalDI.MustGet[arbitrageApp.ChainAdapter](sr, ChainAdapter)
}

// GetBridgeCatalog retrieves the bridge catalog from the registry, typed
// as the arbitrage context's BridgeCatalog port.
func GetBridgeCatalog(sr internalDI.ServiceRegistry) arbitrageApp.BridgeCatalog {
	return internalDI.MustGet[arbitrageApp.BridgeCatalog](sr, BridgeCatalog)
}

// MultiChainAdapter retrieves the concrete adapter, for callers that need
// the extra AddChain surface beyond the ChainAdapter port.
func MultiChainAdapter(sr internalDI.ServiceRegistry) *chainApp.MultiChainAdapter {
	return internalDI.MustGet[*chainApp.MultiChainAdapter](sr, ChainAdapter)
}
