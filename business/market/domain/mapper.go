package domain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/meridianfi/arbengine/internal/apperror"
	"github.com/meridianfi/arbengine/internal/asset"
)

// Mapper canonicalizes per-chain token addresses into a single asset
// identity and exposes equivalence queries across chains. The forward and
// reverse indexes are updated atomically so a reader never observes one
// without the other.
type Mapper struct {
	mu      sync.RWMutex
	forward map[asset.CanonicalAssetID]map[uint64]asset.ChainAssetInfo
	reverse map[reverseKey]asset.CanonicalAssetID
	native  map[uint64]asset.CanonicalAssetID // chain -> native asset's canonical id
}

type reverseKey struct {
	chainID uint64
	address common.Address
}

// NewMapper returns an empty mapper.
func NewMapper() *Mapper {
	return &Mapper{
		forward: make(map[asset.CanonicalAssetID]map[uint64]asset.ChainAssetInfo),
		reverse: make(map[reverseKey]asset.CanonicalAssetID),
		native:  make(map[uint64]asset.CanonicalAssetID),
	}
}

// AddMapping registers one (canonical asset, chain) representation,
// updating the forward and reverse indexes together. It rejects a
// (chain, address) pair that is already mapped to a different canonical
// asset.
func (m *Mapper) AddMapping(id asset.CanonicalAssetID, info asset.ChainAssetInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := reverseKey{chainID: info.ChainID, address: info.Address}
	if existing, ok := m.reverse[key]; ok && existing != id {
		return apperror.New(apperror.CodeDuplicateMapping,
			apperror.WithMessage(fmt.Sprintf("chain %d address %s already mapped to %s", info.ChainID, info.Address.Hex(), existing)))
	}

	if m.forward[id] == nil {
		m.forward[id] = make(map[uint64]asset.ChainAssetInfo)
	}
	m.forward[id][info.ChainID] = info
	m.reverse[key] = id

	if info.IsNative {
		m.native[info.ChainID] = id
	}

	return nil
}

// Canonical resolves a (chain, address) pair to its canonical asset id.
func (m *Mapper) Canonical(chainID uint64, address common.Address) (asset.CanonicalAssetID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.reverse[reverseKey{chainID: chainID, address: address}]
	return id, ok
}

// CanonicalNative resolves the canonical asset id for a chain's native coin.
func (m *Mapper) CanonicalNative(chainID uint64) (asset.CanonicalAssetID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.native[chainID]
	return id, ok
}

// Addresses returns every chain's representation of a canonical asset.
func (m *Mapper) Addresses(id asset.CanonicalAssetID) map[uint64]asset.ChainAssetInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uint64]asset.ChainAssetInfo, len(m.forward[id]))
	for chain, info := range m.forward[id] {
		out[chain] = info
	}
	return out
}

// Equivalents is an alias for Addresses, emphasizing the cross-chain
// equivalence-query use case (given one chain's representation, find
// what the same asset looks like everywhere else it trades).
func (m *Mapper) Equivalents(chainID uint64, address common.Address) map[uint64]asset.ChainAssetInfo {
	id, ok := m.Canonical(chainID, address)
	if !ok {
		return nil
	}
	return m.Addresses(id)
}

// WrappedOf returns the canonical asset that id wraps, if any.
func (m *Mapper) WrappedOf(id asset.CanonicalAssetID) (asset.CanonicalAssetID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, info := range m.forward[id] {
		if info.IsWrapped {
			return info.WrappedOf, true
		}
	}
	return "", false
}

// NativeOf returns the chain id that id is the native coin of, if any.
// When id is native on several chains, the lowest chain id is returned.
func (m *Mapper) NativeOf(id asset.CanonicalAssetID) (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best uint64
	found := false
	for chain, native := range m.native {
		if native == id && (!found || chain < best) {
			best, found = chain, true
		}
	}
	return best, found
}

// NormalizeSymbol strips common fiat/stable suffixes (USDT, USD, BUSD)
// from a ticker-style symbol, deriving the bare canonical-asset hint used
// when ingesting a SourceQuote whose AssetSymbol does not directly name a
// chain/address pair.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range []string{"USDT", "BUSD", "USD"} {
		if strings.HasSuffix(s, suffix) && s != suffix {
			return strings.TrimSuffix(s, suffix)
		}
	}
	return s
}

// DefaultMapper returns a mapper bootstrapped from a bundled default table
// covering the commonly traded cross-chain assets.
func DefaultMapper() *Mapper {
	m := NewMapper()

	mustAdd := func(id asset.CanonicalAssetID, info asset.ChainAssetInfo) {
		if err := m.AddMapping(id, info); err != nil {
			panic(err) // bundled table is never expected to collide
		}
	}

	mustAdd("ETH", asset.ChainAssetInfo{ChainID: asset.ChainIDEthereum, IsNative: true, Decimals: 18})
	mustAdd("ETH", asset.ChainAssetInfo{ChainID: asset.ChainIDArbitrum, IsNative: true, Decimals: 18})
	mustAdd("ETH", asset.ChainAssetInfo{ChainID: asset.ChainIDOptimism, IsNative: true, Decimals: 18})
	mustAdd("ETH", asset.ChainAssetInfo{ChainID: asset.ChainIDBase, IsNative: true, Decimals: 18})

	mustAdd("WETH", asset.ChainAssetInfo{ChainID: asset.ChainIDEthereum, Address: asset.AddrWETHEthereum, Decimals: 18, IsWrapped: true, WrappedOf: "ETH"})

	mustAdd("USDC", asset.ChainAssetInfo{ChainID: asset.ChainIDEthereum, Address: asset.AddrUSDCEthereum, Decimals: 6})
	mustAdd("USDC", asset.ChainAssetInfo{ChainID: asset.ChainIDPolygon, Address: asset.AddrUSDCPolygon, Decimals: 6})
	mustAdd("USDC", asset.ChainAssetInfo{ChainID: asset.ChainIDArbitrum, Address: asset.AddrUSDCArbitrum, Decimals: 6})
	mustAdd("USDC", asset.ChainAssetInfo{ChainID: asset.ChainIDFantom, Address: asset.AddrUSDCFantom, Decimals: 6})

	mustAdd("USDT", asset.ChainAssetInfo{ChainID: asset.ChainIDEthereum, Address: asset.AddrUSDTEthereum, Decimals: 6})

	mustAdd("WBTC", asset.ChainAssetInfo{ChainID: asset.ChainIDEthereum, Address: asset.AddrWBTCEthereum, Decimals: 8})

	mustAdd("MATIC", asset.ChainAssetInfo{ChainID: asset.ChainIDPolygon, IsNative: true, Decimals: 18})
	mustAdd("WMATIC", asset.ChainAssetInfo{ChainID: asset.ChainIDPolygon, Address: asset.AddrWMATICPolygon, Decimals: 18, IsWrapped: true, WrappedOf: "MATIC"})

	mustAdd("FTM", asset.ChainAssetInfo{ChainID: asset.ChainIDFantom, IsNative: true, Decimals: 18})

	return m
}
