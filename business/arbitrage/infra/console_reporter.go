// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	"github.com/meridianfi/arbengine/business/arbitrage/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Cross-Chain Arbitrage Engine Started")
	fmt.Fprintln(r.out, "=====================================")
	return nil
}

// Report outputs a completed opportunity evaluation to the console.
func (r *ConsoleReporter) Report(eval domain.ComprehensiveEvaluation) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "OPPORTUNITY EVALUATED  [%s]\n", eval.Priority)
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "ID:                %s\n", eval.OpportunityID)
	fmt.Fprintf(r.out, "Evaluated at:      %s\n", eval.EvaluatedAt.Format(time.RFC3339))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "SCORES")
	fmt.Fprintf(r.out, "  Profitability:    %.1f\n", eval.ProfitabilityScore)
	fmt.Fprintf(r.out, "  Time sensitivity: %.1f\n", eval.TimeSensitivityScore)
	fmt.Fprintf(r.out, "  Risk (overall):   %.1f (%s)\n", eval.Risk.OverallRisk, eval.Risk.Band)
	fmt.Fprintf(r.out, "  Feasibility:      %.1f\n", eval.Feasibility.OverallScore)
	fmt.Fprintf(r.out, "  Final score:      %.1f\n", eval.FinalScore)
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "RECOMMENDATION")
	fmt.Fprintf(r.out, "  Action:          %s\n", eval.Recommendation.Action)
	fmt.Fprintf(r.out, "  Confidence:      %.2f\n", eval.Recommendation.Confidence)
	fmt.Fprintf(r.out, "  Timeline:        %s\n", eval.Recommendation.Timeline)
	for _, reason := range eval.Recommendation.Reasoning {
		fmt.Fprintf(r.out, "  - %s\n", reason)
	}
	if len(eval.Feasibility.Bottlenecks) > 0 {
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintln(r.out, "BOTTLENECKS")
		for _, b := range eval.Feasibility.Bottlenecks {
			fmt.Fprintf(r.out, "  - %s (%s)\n", b.Name, b.Severity)
		}
	}
	if len(eval.ExecutionPlan) > 0 {
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintln(r.out, "EXECUTION PLAN")
		for _, step := range eval.ExecutionPlan {
			fmt.Fprintf(r.out, "  %d. %s\n", step.Number, step.Description)
		}
	}
	fmt.Fprintln(r.out, "================================================================================")
}

// UpdatePrices is a no-op for the console reporter.
func (r *ConsoleReporter) UpdatePrices(snapshot app.PriceSnapshot) {
	// Console reporter only outputs completed evaluations, not continuous
	// price updates.
}

// UpdateConnectionStatus outputs connection status changes.
func (r *ConsoleReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	status := "disconnected"
	if connected {
		status = fmt.Sprintf("connected (%s)", latency)
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// UpdateBlock is a no-op for the console reporter (too noisy).
func (r *ConsoleReporter) UpdateBlock(chainID uint64, blockNumber uint64) {
	// Console reporter doesn't output every block on every chain
}

// UpdateGasPrice outputs gas price (no-op for console - too noisy).
func (r *ConsoleReporter) UpdateGasPrice(chainID uint64, gweiPrice float64) {
	// Console reporter doesn't output continuous gas updates
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Arbitrage Engine Stopped")
	return nil
}
