package app

import (
	"context"

	"arbidash/business/arbitrage/domain"
)

// Reporter defines the interface for surfacing detection results.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// ReportOpportunity sends a detected opportunity to be displayed/logged.
	ReportOpportunity(opp *domain.Opportunity)

	// ReportTransaction sends a simulated execution to be displayed/logged.
	ReportTransaction(tx *domain.Transaction)

	// ReportBrokerError surfaces a broker fetch failure.
	ReportBrokerError(broker string, err error)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
