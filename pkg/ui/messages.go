// Package ui provides the Bubble Tea TUI for the arbitrage dashboard.
package ui

import (
	"arbidash/business/arbitrage/domain"
)

// Message types for TUI updates

// TickMsg is sent periodically to refresh the dashboard from the store.
type TickMsg struct{}

// OpportunityMsg is sent when an arbitrage opportunity is detected.
type OpportunityMsg struct {
	Opportunity *domain.Opportunity
}

// TransactionMsg is sent when a simulated execution is recorded.
type TransactionMsg struct {
	Transaction *domain.Transaction
}

// ErrorMsg is sent when a broker failure should be surfaced on the dashboard.
type ErrorMsg struct {
	Broker string
	Err    error
}
