// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PriceRow represents one (chain, asset) quote in the price table.
type PriceRow struct {
	Chain     string
	Asset     string
	PriceUSD  float64
	Source    string
	AgeSecond float64
}

// PricesComponent renders the live price table across chains.
type PricesComponent struct {
	rows    []PriceRow
	gasGwei map[string]float64
}

// NewPricesComponent creates a new prices component.
func NewPricesComponent() *PricesComponent {
	return &PricesComponent{
		rows:    make([]PriceRow, 0),
		gasGwei: make(map[string]float64),
	}
}

// Update replaces the price table's rows.
func (p *PricesComponent) Update(rows []PriceRow) {
	p.rows = rows
}

// SetGas records the current gas price in gwei for a chain.
func (p *PricesComponent) SetGas(chain string, gwei float64) {
	p.gasGwei[chain] = gwei
}

// View renders the prices component.
func (p *PricesComponent) View() string {
	if len(p.rows) == 0 {
		return "Waiting for price data..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	staleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	var result string
	result = headerStyle.Render("PRICES")
	result += "\n\n"

	result += fmt.Sprintf("  %-14s  %-8s  %12s  %10s  %8s\n",
		"Chain", "Asset", "Price USD", "Source", "Age")
	result += dimStyle.Render("  " + strings.Repeat("─", 58)) + "\n"

	for _, row := range p.rows {
		ageStyle := dimStyle
		ageStr := fmt.Sprintf("%.0fs", row.AgeSecond)
		if row.AgeSecond > 30 {
			ageStyle = staleStyle
		}

		result += fmt.Sprintf("  %-14s  %-8s  %12s  %10s  %s\n",
			row.Chain,
			row.Asset,
			"$"+fmt.Sprintf("%.4f", row.PriceUSD),
			row.Source,
			ageStyle.Render(ageStr),
		)
	}

	if len(p.gasGwei) > 0 {
		result += "\n"
		result += dimStyle.Render("  " + strings.Repeat("─", 58)) + "\n"
		result += headerStyle.Render("  GAS") + "\n"
		for chain, gwei := range p.gasGwei {
			result += fmt.Sprintf("  %-14s  %.1f gwei\n", chain, gwei)
		}
	}

	return result
}
