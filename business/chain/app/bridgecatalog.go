package app

import (
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
)

// StaticBridgeCatalog implements the arbitrage engine's BridgeCatalog
// port over a fixed, configuration-loaded list of bridges. There is no
// teacher precedent for this component — the teacher compared a single
// CEX quote against a single DEX quote on one chain and never needed to
// route a transfer between chains.
type StaticBridgeCatalog struct {
	bridges []marketDomain.BridgeConfig
}

// NewStaticBridgeCatalog builds a catalog from the configured bridges.
func NewStaticBridgeCatalog(bridges []marketDomain.BridgeConfig) *StaticBridgeCatalog {
	return &StaticBridgeCatalog{bridges: bridges}
}

// Bridges returns every configured bridge that supports both chains.
func (c *StaticBridgeCatalog) Bridges(from, to uint64) []marketDomain.BridgeConfig {
	var out []marketDomain.BridgeConfig
	for _, b := range c.bridges {
		if b.Supports(from, to) {
			out = append(out, b)
		}
	}
	return out
}

// FeeEstimate estimates the USD fee a bridge would charge for moving
// amountUSD of value.
func (c *StaticBridgeCatalog) FeeEstimate(bridge marketDomain.BridgeConfig, amountUSD float64) float64 {
	return bridge.Fee.Estimate(amountUSD)
}
