package domain

import (
	"time"

	"github.com/meridianfi/arbengine/internal/asset"
)

// PriceKey is the aggregator's table key: one entry per (chain, asset).
type PriceKey struct {
	ChainID uint64
	Asset   asset.CanonicalAssetID
}

// AssetPrice is the aggregator's per-(chain, asset) table entry.
type AssetPrice struct {
	Asset     asset.CanonicalAssetID
	ChainID   uint64
	Price      float64 // must be > 0
	Liquidity  float64 // non-negative, USD-equivalent depth
	Slippage   float64 // 0..1, clamp(reference_liquidity/liquidity, 0, 0.1)
	Timestamp  time.Time
	Sources    []string // ordered, contributing source names
	Confidence float64  // 0..1
}

// Key returns this entry's table key.
func (p AssetPrice) Key() PriceKey {
	return PriceKey{ChainID: p.ChainID, Asset: p.Asset}
}

// IsStale reports whether the entry is older than maxAge as of now.
func (p AssetPrice) IsStale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(p.Timestamp) > maxAge
}

// SourceQuote is what a PriceSourceAdapter emits into the aggregator's sink.
type SourceQuote struct {
	SourceID    string
	AssetSymbol string // ticker-style; normalized by the mapper on ingest
	ChainID     uint64
	Price       float64
	Liquidity   float64 // 0 means "unknown"
	Timestamp   time.Time
}
