package app

import (
	"time"

	"arbidash/business/arbitrage/domain"
	pricingDomain "arbidash/business/pricing/domain"
)

// Detector finds arbitrage opportunities in accumulated price history.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect scans every ordered pair of price records and emits an
// opportunity wherever two brokers quote the same symbol with a spread
// at or above the threshold. The scan covers the full history, so a
// stale quote can still pair with a fresh one; the caller bounds the
// history it passes in. Output order is deterministic: buy-side records
// in history order, then sell-side records in history order.
func (d *Detector) Detect(history []pricingDomain.PriceRecord, params domain.Params, detectedAt time.Time) []domain.Opportunity {
	var opportunities []domain.Opportunity

	for i, buy := range history {
		for j, sell := range history {
			if i == j {
				continue
			}
			if buy.Symbol != sell.Symbol || buy.Broker == sell.Broker {
				continue
			}
			if !buy.Price.IsPositive() || !sell.Price.IsPositive() {
				continue
			}

			spread := domain.SpreadPercent(buy.Price, sell.Price)
			if spread.LessThan(params.MinSpreadPercent) {
				continue
			}

			opportunities = append(opportunities, domain.Opportunity{
				Symbol:        buy.Symbol,
				BuyBroker:     buy.Broker,
				SellBroker:    sell.Broker,
				BuyPrice:      buy.Price,
				SellPrice:     sell.Price,
				SpreadPercent: spread,
				NetProfit:     domain.NetProfit(buy.Price, sell.Price, params.FeePercent),
				DetectedAt:    detectedAt,
			})
		}
	}

	return opportunities
}
