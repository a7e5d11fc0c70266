// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// TransactionRow represents a simulated execution in the ledger table.
type TransactionRow struct {
	ExecutedAt    time.Time
	Symbol        string
	BuyBroker     string
	SellBroker    string
	SpreadPercent decimal.Decimal
	NetProfit     decimal.Decimal
}

// LedgerComponent renders the simulated transaction ledger and the
// running total gain.
type LedgerComponent struct {
	rows      []TransactionRow
	totalGain decimal.Decimal
	maxRows   int
}

// NewLedgerComponent creates a ledger component showing the most recent
// maxRows transactions.
func NewLedgerComponent(maxRows int) *LedgerComponent {
	return &LedgerComponent{maxRows: maxRows}
}

// Update replaces the ledger contents. rows arrive oldest first.
func (l *LedgerComponent) Update(rows []TransactionRow, totalGain decimal.Decimal) {
	l.rows = rows
	l.totalGain = totalGain
}

// View renders the ledger component.
func (l *LedgerComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SIMULATED LEDGER"))

	gainStyle := positiveStyle
	if l.totalGain.IsNegative() {
		gainStyle = negativeStyle
	}
	sb.WriteString("   ")
	sb.WriteString(gainStyle.Render(fmt.Sprintf("Total gain: $%s", l.totalGain.StringFixed(4))))
	sb.WriteString("\n\n")

	if len(l.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No executions yet..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-8s  %-8s  %-9s  %-9s  %9s  %10s\n",
		"Time", "Symbol", "Buy", "Sell", "Spread", "Profit"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 60)) + "\n")

	// Newest first, capped at maxRows.
	start := 0
	if len(l.rows) > l.maxRows {
		start = len(l.rows) - l.maxRows
	}
	for i := len(l.rows) - 1; i >= start; i-- {
		row := l.rows[i]
		profitStyle := positiveStyle
		if row.NetProfit.IsNegative() {
			profitStyle = negativeStyle
		}
		sb.WriteString(fmt.Sprintf("  %-8s  %-8s  %-9s  %-9s  %8s%%  %s\n",
			row.ExecutedAt.Format("15:04:05"),
			row.Symbol,
			row.BuyBroker,
			row.SellBroker,
			row.SpreadPercent.StringFixed(4),
			profitStyle.Render(fmt.Sprintf("$%s", row.NetProfit.StringFixed(4))),
		))
	}

	return sb.String()
}
