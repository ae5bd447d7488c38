// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	"github.com/meridianfi/arbengine/business/arbitrage/domain"
	"github.com/meridianfi/arbengine/pkg/ui"
)

// TUIReporter implements Reporter for Bubble Tea TUI.
type TUIReporter struct {
	started bool
}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start initializes the TUI reporter.
// Note: The actual TUI program should be started separately in main.go
// This reporter just sends messages to the already-running program.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.started = true
	ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
	return nil
}

// UpdateStartup sends startup progress to the TUI.
func (r *TUIReporter) UpdateStartup(step, status, message string) {
	if !r.started {
		return
	}
	ui.Send(ui.StartupMsg{
		Step:    step,
		Status:  status,
		Message: message,
	})
}

// Report sends a completed opportunity evaluation to the TUI.
func (r *TUIReporter) Report(eval domain.ComprehensiveEvaluation) {
	if !r.started {
		return
	}
	ui.Send(ui.OpportunityMsg{Evaluation: eval})
}

// UpdatePrices sends a price snapshot to the TUI.
func (r *TUIReporter) UpdatePrices(snapshot app.PriceSnapshot) {
	if !r.started {
		return
	}
	ui.Send(ui.PriceUpdateMsg{Prices: snapshot.Prices, AsOf: snapshot.AsOf})
}

// UpdateConnectionStatus sends connection status to the TUI.
func (r *TUIReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	if !r.started {
		return
	}
	ui.Send(ui.ConnectionStatusMsg{
		Name:      name,
		Connected: connected,
		Latency:   latency,
	})
}

// UpdateBlock sends a new block number on one chain to the TUI.
func (r *TUIReporter) UpdateBlock(chainID uint64, blockNumber uint64) {
	if !r.started {
		return
	}
	ui.Send(ui.BlockMsg{
		ChainID:   chainID,
		Number:    blockNumber,
		Timestamp: time.Now(),
	})
}

// UpdateGasPrice sends the current gas price on one chain to the TUI.
func (r *TUIReporter) UpdateGasPrice(chainID uint64, gweiPrice float64) {
	if !r.started {
		return
	}
	ui.Send(ui.GasPriceMsg{
		ChainID:   chainID,
		GweiPrice: gweiPrice,
	})
}

// Stop gracefully shuts down the TUI reporter.
func (r *TUIReporter) Stop() error {
	r.started = false
	return nil
}
