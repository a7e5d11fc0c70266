// Package app orchestrates price collection across broker providers.
package app

import (
	"context"

	"arbidash/business/pricing/domain"
)

// Provider fetches normalized prices from a single broker.
type Provider interface {
	// Name identifies the broker behind this provider.
	Name() domain.Broker

	// Fetch retrieves the current prices for the watchlist symbols.
	// Records are returned in the broker's response order.
	Fetch(ctx context.Context) ([]domain.PriceRecord, error)
}
