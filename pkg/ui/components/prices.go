// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// BrokerPriceRow is one broker's latest quote for the selected symbol,
// with that broker's own recent price series for the trend column.
type BrokerPriceRow struct {
	Broker    string
	Price     decimal.Decimal
	Timestamp time.Time
	Trend     []float64
}

// SpreadCallout is the widest current cross-broker spread for a symbol.
type SpreadCallout struct {
	BuyBroker     string
	SellBroker    string
	BuyPrice      decimal.Decimal
	SellPrice     decimal.Decimal
	SpreadPercent decimal.Decimal
	Highlight     bool
}

// PricesComponent renders the per-broker price table, one trend
// sparkline per broker, and the widest-spread callout.
type PricesComponent struct {
	symbol  string
	rows    []BrokerPriceRow
	callout *SpreadCallout
}

// NewPricesComponent creates a new prices component.
func NewPricesComponent() *PricesComponent {
	return &PricesComponent{}
}

// SetSymbol sets the displayed symbol.
func (p *PricesComponent) SetSymbol(symbol string) {
	p.symbol = symbol
}

// Update replaces the broker rows.
func (p *PricesComponent) Update(rows []BrokerPriceRow, callout *SpreadCallout) {
	p.rows = rows
	p.callout = callout
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// renderSparkline maps a price series onto block characters.
func renderSparkline(series []float64, width int) string {
	if len(series) == 0 {
		return ""
	}
	if len(series) > width {
		series = series[len(series)-width:]
	}

	min, max := series[0], series[0]
	for _, v := range series {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var sb strings.Builder
	span := max - min
	for _, v := range series {
		idx := 0
		if span > 0 {
			idx = int((v - min) / span * float64(len(sparkRunes)-1))
		}
		sb.WriteRune(sparkRunes[idx])
	}
	return sb.String()
}

// View renders the prices component.
func (p *PricesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	sparkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("PRICES (%s)", p.symbol)))
	sb.WriteString("\n\n")

	if len(p.rows) == 0 {
		sb.WriteString(dimStyle.Render("  Waiting for price data..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-10s  %14s  %8s  %s\n", "Broker", "Price", "Age", "Trend"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 58)) + "\n")
	for _, row := range p.rows {
		age := time.Since(row.Timestamp).Round(time.Second)
		sb.WriteString(fmt.Sprintf("  %-10s  %14s  %8s  ",
			row.Broker,
			"$"+row.Price.StringFixed(4),
			age.String(),
		))
		sb.WriteString(sparkStyle.Render(renderSparkline(row.Trend, 20)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 58)) + "\n")
	if p.callout != nil {
		line := fmt.Sprintf("  Max spread: %s%%  buy %s @ $%s → sell %s @ $%s",
			p.callout.SpreadPercent.StringFixed(4),
			p.callout.BuyBroker,
			p.callout.BuyPrice.StringFixed(4),
			p.callout.SellBroker,
			p.callout.SellPrice.StringFixed(4),
		)
		if p.callout.Highlight {
			sb.WriteString(warnStyle.Render(line))
		} else {
			sb.WriteString(positiveStyle.Render(line))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString(dimStyle.Render("  Need quotes from two brokers for a spread") + "\n")
	}

	return sb.String()
}
