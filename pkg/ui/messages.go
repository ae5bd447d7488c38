// Package ui provides the Bubble Tea TUI for the arbitrage engine.
package ui

import (
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	marketDomain "github.com/meridianfi/arbengine/business/market/domain"
)

// Message types for TUI updates

// OpportunityMsg is sent when an opportunity has been fully evaluated.
type OpportunityMsg struct {
	Evaluation domain.ComprehensiveEvaluation
}

// PriceUpdateMsg is sent when the aggregator's price table refreshes.
type PriceUpdateMsg struct {
	Prices map[marketDomain.PriceKey]marketDomain.AssetPrice
	AsOf   time.Time
}

// ConnectionStatusMsg is sent when connection status changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Latency   time.Duration
}

// BlockMsg is sent when a new block is received on some chain.
type BlockMsg struct {
	ChainID   uint64
	Number    uint64
	Timestamp time.Time
}

// GasPriceMsg is sent when gas price is updated for some chain.
type GasPriceMsg struct {
	ChainID   uint64
	GweiPrice float64
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
