// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	pricingDomain "arbidash/business/pricing/domain"
)

// Opportunity represents a detected cross-broker arbitrage opportunity:
// buy on the cheap broker, sell on the expensive one.
type Opportunity struct {
	Symbol        string
	BuyBroker     pricingDomain.Broker
	SellBroker    pricingDomain.Broker
	BuyPrice      decimal.Decimal
	SellPrice     decimal.Decimal
	SpreadPercent decimal.Decimal
	NetProfit     decimal.Decimal // fee-adjusted profit per unit, may be negative
	DetectedAt    time.Time
}

// IsProfitable returns true if the fee-adjusted profit is positive.
func (o *Opportunity) IsProfitable() bool {
	return o.NetProfit.IsPositive()
}

// Transaction is a simulated execution recorded in the ledger.
type Transaction struct {
	Opportunity
	ExecutedAt time.Time
}
