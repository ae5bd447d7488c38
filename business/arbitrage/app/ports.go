// Package app contains the arbitrage engine's application services: the
// graph builder, cycle detector, cost calculators, path optimizer, risk
// assessor, feasibility analyzer, opportunity evaluator, and the engine
// that wires them together per detection tick.
package app

import (
	"context"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
)

// PriceSnapshot is a read-only, point-in-time view of the aggregator's
// price table handed to the graph builder. Readers never see the
// aggregator's live map; they get a copy.
type PriceSnapshot struct {
	Prices  map[marketDomain.PriceKey]marketDomain.AssetPrice
	AsOf    time.Time
}

// GasQuote is what a ChainAdapter reports for the current cost of a
// transaction on one chain.
type GasQuote struct {
	PriceWeiPerGas   float64
	BaseFeeWeiPerGas float64
	PriorityFeeWei   float64
}

// ChainAdapter is the port over a live blockchain connection. The graph
// builder omits edges sourced from a chain whose adapter reports
// unavailable rather than failing the whole tick.
type ChainAdapter interface {
	CurrentGasPrice(ctx context.Context, chainID uint64) (GasQuote, error)
	BlockNumber(ctx context.Context, chainID uint64) (uint64, error)
	EstimateGas(ctx context.Context, chainID uint64, txKind string) (uint64, error)
	NativeTokenUSD(ctx context.Context, chainID uint64) (float64, error)
	Available(chainID uint64) bool
}

// BridgeCatalog is the port over the set of known cross-chain bridges.
type BridgeCatalog interface {
	Bridges(from, to uint64) []marketDomain.BridgeConfig
	FeeEstimate(bridge marketDomain.BridgeConfig, amountUSD float64) float64
}

// OpportunitySubscriber receives every completed evaluation, by value.
type OpportunitySubscriber interface {
	OnOpportunity(eval domain.ComprehensiveEvaluation)
}

// Reporter is the engine's UI/telemetry sink: in addition to opportunity
// evaluations it receives the lower-level signals a dashboard wants
// (connection health, current block, gas price) without performing any
// calculations of its own.
type Reporter interface {
	Start(ctx context.Context) error
	Report(eval domain.ComprehensiveEvaluation)
	UpdatePrices(snapshot PriceSnapshot)
	UpdateConnectionStatus(name string, connected bool, latency time.Duration)
	UpdateBlock(chainID uint64, blockNumber uint64)
	UpdateGasPrice(chainID uint64, gweiPrice float64)
	Stop() error
}
