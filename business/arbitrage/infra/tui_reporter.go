// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"arbidash/business/arbitrage/domain"
	"arbidash/pkg/ui"
)

// TUIReporter implements Reporter by forwarding events to the Bubble Tea
// program. The dashboard reads prices and the ledger from the shared
// store on its own tick; the reporter only feeds the activity stream.
type TUIReporter struct {
	program *tea.Program
}

// NewTUIReporter creates a TUIReporter over an existing program. The
// program must be constructed before any reporting goroutine starts so
// all sends go through the program's own synchronization.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{program: program}
}

// Start initializes the TUI reporter. The Bubble Tea program itself is
// started by the caller on the main goroutine.
func (r *TUIReporter) Start(ctx context.Context) error {
	return nil
}

// ReportOpportunity sends a detected opportunity to the dashboard.
func (r *TUIReporter) ReportOpportunity(opp *domain.Opportunity) {
	r.program.Send(ui.OpportunityMsg{Opportunity: opp})
}

// ReportTransaction sends a simulated execution to the dashboard.
func (r *TUIReporter) ReportTransaction(tx *domain.Transaction) {
	r.program.Send(ui.TransactionMsg{Transaction: tx})
}

// ReportBrokerError surfaces a broker fetch failure on the dashboard.
func (r *TUIReporter) ReportBrokerError(broker string, err error) {
	r.program.Send(ui.ErrorMsg{Broker: broker, Err: err})
}

// Stop gracefully shuts down the TUI reporter.
func (r *TUIReporter) Stop() error {
	return nil
}
