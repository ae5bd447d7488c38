package asset

import "github.com/ethereum/go-ethereum/common"

// CanonicalAssetID identifies an asset independent of any single chain
// (e.g. "USDC", "ETH", "WBTC"). The asset mapper resolves a per-chain
// AssetID to/from its CanonicalAssetID so the arbitrage graph can treat
// USDC on Ethereum and USDC on Polygon as the same economic asset living
// at two different nodes.
type CanonicalAssetID string

// ChainAssetInfo describes how a canonical asset is represented on one
// specific chain.
type ChainAssetInfo struct {
	ChainID   uint64
	Address   common.Address
	Decimals  uint8
	IsNative  bool
	IsWrapped bool
	WrappedOf CanonicalAssetID // canonical id this wraps, if IsWrapped
}

// AssetID returns the per-chain AssetID this info describes.
func (c ChainAssetInfo) AssetID() AssetID {
	if c.IsNative {
		return NewNativeAssetID(c.ChainID)
	}
	return NewTokenAssetID(c.ChainID, c.Address)
}
