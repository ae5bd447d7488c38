// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// OpportunityRow represents one evaluated opportunity in the list.
type OpportunityRow struct {
	Timestamp     string
	OpportunityID string
	Route         string // e.g. "USDC@1 -> USDC@42161 -> USDC@1"
	Hops          int
	NotionalUSD   float64
	NetProfitUSD  float64
	FinalScore    float64
	Priority      string
	Action        string
	RiskBand      string
	Bottlenecks   []string
	Profitable    bool
}

// OpportunitiesComponent renders the opportunities list.
type OpportunitiesComponent struct {
	rows       []OpportunityRow
	maxRows    int
	offset     int // For scrolling
	visibleMax int // How many to show at once
	maxHeight  int // Max lines to render
}

// NewOpportunitiesComponent creates a new opportunities component.
func NewOpportunitiesComponent(maxRows int) *OpportunitiesComponent {
	return &OpportunitiesComponent{
		rows:       make([]OpportunityRow, 0),
		maxRows:    maxRows,
		offset:     0,
		visibleMax: 3,  // Show max 3 opportunities at once
		maxHeight:  25, // Max lines to render
	}
}

// Add adds a new opportunity to the list.
func (o *OpportunitiesComponent) Add(row OpportunityRow) {
	o.rows = append([]OpportunityRow{row}, o.rows...)
	if len(o.rows) > o.maxRows {
		o.rows = o.rows[:o.maxRows]
	}
	// Reset scroll to top on new opportunity
	o.offset = 0
}

// Clear clears all opportunities.
func (o *OpportunitiesComponent) Clear() {
	o.rows = make([]OpportunityRow, 0)
	o.offset = 0
}

// ScrollUp scrolls the list up.
func (o *OpportunitiesComponent) ScrollUp() {
	if o.offset > 0 {
		o.offset--
	}
}

// ScrollDown scrolls the list down.
func (o *OpportunitiesComponent) ScrollDown() {
	maxOffset := len(o.rows) - o.visibleMax
	if maxOffset < 0 {
		maxOffset = 0
	}
	if o.offset < maxOffset {
		o.offset++
	}
}

// Count returns the total number of opportunities.
func (o *OpportunitiesComponent) Count() int {
	return len(o.rows)
}

// View renders the opportunities component.
func (o *OpportunitiesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	scrollHint := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

	var result string
	result = headerStyle.Render("OPPORTUNITIES")

	if len(o.rows) > 0 {
		countStr := fmt.Sprintf(" (%d total, ↑↓ scroll)", len(o.rows))
		result += mutedStyle.Render(countStr)
	}
	result += "\n\n"

	if len(o.rows) == 0 {
		result += mutedStyle.Render("  No opportunities detected yet.\n")
		result += mutedStyle.Render("  Scanning chains for cycles...\n")
		return result
	}

	if o.offset > 0 {
		result += scrollHint.Render(fmt.Sprintf("  ▲ %d above\n", o.offset))
	}

	end := o.offset + o.visibleMax
	if end > len(o.rows) {
		end = len(o.rows)
	}

	for i := o.offset; i < end; i++ {
		row := o.rows[i]
		icon := "●"
		style := profitStyle
		if !row.Profitable {
			icon = "○"
			style = mutedStyle
		}

		result += fmt.Sprintf("  %s [%s] %s | %d hops | [%s]\n",
			style.Render(icon),
			row.Timestamp,
			row.Route,
			row.Hops,
			row.Priority,
		)

		result += fmt.Sprintf("    Net: %s | Score: %.1f | Risk: %s | Action: %s\n",
			style.Render(fmt.Sprintf("$%.2f", row.NetProfitUSD)),
			row.FinalScore,
			row.RiskBand,
			row.Action,
		)

		if len(row.Bottlenecks) > 0 {
			result += dimStyle.Render("    Bottlenecks: ")
			for j, b := range row.Bottlenecks {
				if j > 0 {
					result += " "
				}
				result += dimStyle.Render(b)
			}
			result += "\n"
		}

		if i < end-1 {
			result += dimStyle.Render("    ─────────────────────────────────\n")
		}
	}

	if end < len(o.rows) {
		result += scrollHint.Render(fmt.Sprintf("\n  ▼ %d more below\n", len(o.rows)-end))
	}

	return result
}
