// Package ui provides the Bubble Tea TUI for the arbitrage dashboard.
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	arbApp "arbidash/business/arbitrage/app"
	arbDomain "arbidash/business/arbitrage/domain"
	pricingDomain "arbidash/business/pricing/domain"
	"arbidash/pkg/ui/components"
)

// calloutThreshold is the spread percent past which the max-spread
// callout is highlighted.
var calloutThreshold = decimal.RequireFromString("0.6")

// tickInterval is the dashboard refresh rate.
const tickInterval = 500 * time.Millisecond

// sparklineLen caps how many points feed the trend sparkline.
const sparklineLen = 40

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	store    *arbApp.Store
	symbols  []string
	selected int

	// Components
	prices   *components.PricesComponent
	ledger   *components.LedgerComponent
	settings *components.SettingsComponent
	keys     KeyMap

	// State
	editing    bool
	quitting   bool
	width      int
	height     int
	activity   []string
	errors     []ErrorEntry
	lastUpdate time.Time
}

// New creates a new dashboard model over the shared store.
func New(store *arbApp.Store, symbols []string) Model {
	m := Model{
		store:    store,
		symbols:  symbols,
		prices:   components.NewPricesComponent(),
		ledger:   components.NewLedgerComponent(12),
		settings: components.NewSettingsComponent(),
		keys:     DefaultKeyMap(),
		activity: make([]string, 0, 8),
		errors:   make([]ErrorEntry, 0, 3),
	}
	if len(symbols) > 0 {
		m.prices.SetSymbol(symbols[0])
	}
	return m
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.editing {
			return m.updateSettings(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Settings):
			m.editing = true
			m.fillSettings()
			return m, m.settings.Focus()
		case key.Matches(msg, m.keys.NextSymbol):
			if len(m.symbols) > 0 {
				m.selected = (m.selected + 1) % len(m.symbols)
				m.prices.SetSymbol(m.symbols[m.selected])
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.PrevSymbol):
			if len(m.symbols) > 0 {
				m.selected = (m.selected - 1 + len(m.symbols)) % len(m.symbols)
				m.prices.SetSymbol(m.symbols[m.selected])
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.errors = m.errors[:0]
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case OpportunityMsg:
		if msg.Opportunity != nil {
			opp := msg.Opportunity
			m.activity = addActivity(m.activity, fmt.Sprintf(
				"%s spread %s%%: buy %s, sell %s",
				opp.Symbol,
				opp.SpreadPercent.StringFixed(4),
				opp.BuyBroker.String(),
				opp.SellBroker.String(),
			))
		}

	case TransactionMsg:
		if msg.Transaction != nil {
			tx := msg.Transaction
			m.activity = addActivity(m.activity, fmt.Sprintf(
				"EXECUTED %s %s→%s profit $%s",
				tx.Symbol,
				tx.BuyBroker.String(),
				tx.SellBroker.String(),
				tx.NetProfit.StringFixed(4),
			))
		}

	case ErrorMsg:
		m.errors = append(m.errors, ErrorEntry{
			Message:   fmt.Sprintf("%s: %v", msg.Broker, msg.Err),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
	}

	return m, nil
}

// updateSettings handles key input while the settings form is open.
func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.settings.Blur()
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m, m.settings.Next()
	case key.Matches(msg, m.keys.Apply):
		if err := m.applySettings(); err != nil {
			m.settings.SetError(err.Error())
			return m, nil
		}
		m.editing = false
		m.settings.Blur()
		return m, nil
	}
	return m, m.settings.Update(msg)
}

// fillSettings loads the current parameters into the form.
func (m *Model) fillSettings() {
	params := m.store.Params()
	m.settings.SetValues(
		params.FeePercent.String(),
		params.CapitalInvested.String(),
		strconv.FormatFloat(params.Cooldown.Seconds(), 'f', -1, 64),
		params.MinSpreadPercent.String(),
	)
}

// applySettings parses the form and stores the new parameters.
func (m *Model) applySettings() error {
	feeRaw, capitalRaw, cooldownRaw, minSpreadRaw := m.settings.Values()

	fee, err := decimal.NewFromString(feeRaw)
	if err != nil {
		return fmt.Errorf("invalid fee: %s", feeRaw)
	}
	capital, err := decimal.NewFromString(capitalRaw)
	if err != nil {
		return fmt.Errorf("invalid capital: %s", capitalRaw)
	}
	cooldownSeconds, err := strconv.ParseFloat(cooldownRaw, 64)
	if err != nil {
		return fmt.Errorf("invalid cooldown: %s", cooldownRaw)
	}
	minSpread, err := decimal.NewFromString(minSpreadRaw)
	if err != nil {
		return fmt.Errorf("invalid min spread: %s", minSpreadRaw)
	}

	return m.store.SetParams(arbDomain.Params{
		FeePercent:       fee,
		CapitalInvested:  capital,
		Cooldown:         time.Duration(cooldownSeconds * float64(time.Second)),
		MinSpreadPercent: minSpread,
	})
}

// refresh pulls fresh state from the store into the components.
func (m *Model) refresh() {
	if len(m.symbols) == 0 {
		return
	}
	symbol := m.symbols[m.selected]
	snapshot := m.store.PriceSnapshot()

	var symbolRecords []pricingDomain.PriceRecord
	for _, r := range snapshot {
		if r.Symbol == symbol {
			symbolRecords = append(symbolRecords, r)
		}
	}

	// Latest quote and price series per broker, in broker display order.
	// A broker that stopped contributing simply has no row.
	latest := make(map[pricingDomain.Broker]pricingDomain.PriceRecord)
	series := make(map[pricingDomain.Broker][]float64)
	for _, r := range symbolRecords {
		if existing, ok := latest[r.Broker]; !ok || !r.Timestamp.Before(existing.Timestamp) {
			latest[r.Broker] = r
		}
		series[r.Broker] = append(series[r.Broker], r.Price.InexactFloat64())
	}
	rows := make([]components.BrokerPriceRow, 0, len(latest))
	for _, b := range pricingDomain.AllBrokers() {
		if r, ok := latest[b]; ok {
			trend := series[b]
			if len(trend) > sparklineLen {
				trend = trend[len(trend)-sparklineLen:]
			}
			rows = append(rows, components.BrokerPriceRow{
				Broker:    b.String(),
				Price:     r.Price,
				Timestamp: r.Timestamp,
				Trend:     trend,
			})
		}
	}

	var callout *components.SpreadCallout
	if quote, ok := arbDomain.MaxSpread(symbolRecords); ok {
		callout = &components.SpreadCallout{
			BuyBroker:     quote.BuyBroker.String(),
			SellBroker:    quote.SellBroker.String(),
			BuyPrice:      quote.BuyPrice,
			SellPrice:     quote.SellPrice,
			SpreadPercent: quote.SpreadPercent,
			Highlight:     quote.SpreadPercent.GreaterThanOrEqual(calloutThreshold),
		}
	}

	m.prices.Update(rows, callout)

	transactions := m.store.Transactions()
	ledgerRows := make([]components.TransactionRow, 0, len(transactions))
	for _, tx := range transactions {
		ledgerRows = append(ledgerRows, components.TransactionRow{
			ExecutedAt:    tx.ExecutedAt,
			Symbol:        tx.Symbol,
			BuyBroker:     tx.BuyBroker.String(),
			SellBroker:    tx.SellBroker.String(),
			SpreadPercent: tx.SpreadPercent,
			NetProfit:     tx.NetProfit,
		})
	}
	m.ledger.Update(ledgerRows, m.store.TotalGain())

	m.lastUpdate = time.Now()
}

// addActivity adds an activity message and returns the updated slice (keeps last 6).
func addActivity(feed []string, message string) []string {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message)
	feed = append(feed, line)
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" 📈 Cross-Exchange Arbitrage Dashboard "))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	if m.editing {
		b.WriteString(BoxStyle.Render(m.settings.View()))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("q: quit"))
		return b.String()
	}

	leftCol := m.prices.View()

	var rightContent strings.Builder
	rightContent.WriteString(m.renderActivityFeed())
	rightContent.WriteString("\n\n")
	rightContent.WriteString(m.ledger.View())
	rightCol := rightContent.String()

	if m.width > 100 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("q: quit • s: settings • ←→: symbol • e: clear errors"))

	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if len(m.symbols) > 0 {
		symbolParts := make([]string, len(m.symbols))
		for i, s := range m.symbols {
			if i == m.selected {
				symbolParts[i] = HeaderStyle.Render(s)
			} else {
				symbolParts[i] = MutedValue.Render(s)
			}
		}
		parts = append(parts, strings.Join(symbolParts, " "))
	}

	parts = append(parts, fmt.Sprintf("Records: %d", m.store.PriceCount()))

	params := m.store.Params()
	parts = append(parts, MutedValue.Render(fmt.Sprintf(
		"fee %s%% • min spread %s%% • cooldown %s",
		params.FeePercent.String(),
		params.MinSpreadPercent.String(),
		params.Cooldown,
	)))

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// renderActivityFeed renders the recent detection activity.
func (m Model) renderActivityFeed() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("LIVE ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activity) == 0 {
		sb.WriteString(MutedValue.Render("  Waiting for opportunities..."))
	} else {
		for _, line := range m.activity {
			if strings.Contains(line, "EXECUTED") {
				sb.WriteString(PositiveValue.Render("  " + line))
			} else {
				sb.WriteString(MutedValue.Render("  " + line))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// NewProgram creates the dashboard program over the shared store. The
// returned program must run on the main goroutine; its Send method is
// safe to call from other goroutines as soon as the program exists, so
// construct it before starting anything that reports into it.
func NewProgram(store *arbApp.Store, symbols []string, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return tea.NewProgram(New(store, symbols), opts...)
}
