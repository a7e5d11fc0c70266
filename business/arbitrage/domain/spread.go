package domain

import (
	"github.com/shopspring/decimal"

	pricingDomain "arbidash/business/pricing/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// SpreadPercent computes the relative spread between a buy and a sell
// price as a percentage of the buy price. Negative when sell < buy.
func SpreadPercent(buyPrice, sellPrice decimal.Decimal) decimal.Decimal {
	if buyPrice.IsZero() {
		return decimal.Zero
	}
	return sellPrice.Sub(buyPrice).Div(buyPrice).Mul(hundred)
}

// NetProfit computes the fee-adjusted profit per unit for buying at
// buyPrice and selling at sellPrice, charging feePercent on each leg:
//
//	sell * (1 - fee/100) - buy * (1 + fee/100)
//
// The result may be negative; a spread above the detection threshold
// does not guarantee the fees leave anything over.
func NetProfit(buyPrice, sellPrice, feePercent decimal.Decimal) decimal.Decimal {
	feeFraction := feePercent.Div(hundred)
	proceeds := sellPrice.Mul(one.Sub(feeFraction))
	cost := buyPrice.Mul(one.Add(feeFraction))
	return proceeds.Sub(cost)
}

// SpreadQuote is the widest current spread for one symbol across brokers.
type SpreadQuote struct {
	Symbol        string
	BuyBroker     pricingDomain.Broker
	SellBroker    pricingDomain.Broker
	BuyPrice      decimal.Decimal
	SellPrice     decimal.Decimal
	SpreadPercent decimal.Decimal
}

// MaxSpread finds the widest spread among the latest price per broker
// for a single symbol. Records must share one symbol; the latest record
// per broker wins, and among equal spreads the first pair found wins.
// Returns false when fewer than two brokers quote the symbol.
func MaxSpread(records []pricingDomain.PriceRecord) (SpreadQuote, bool) {
	latest := make(map[pricingDomain.Broker]pricingDomain.PriceRecord)
	order := make([]pricingDomain.Broker, 0, len(records))
	for _, r := range records {
		if _, seen := latest[r.Broker]; !seen {
			order = append(order, r.Broker)
		} else if r.Timestamp.Before(latest[r.Broker].Timestamp) {
			continue
		}
		latest[r.Broker] = r
	}
	if len(order) < 2 {
		return SpreadQuote{}, false
	}

	var best SpreadQuote
	found := false
	for _, buyBroker := range order {
		for _, sellBroker := range order {
			if buyBroker == sellBroker {
				continue
			}
			buy := latest[buyBroker]
			sell := latest[sellBroker]
			spread := SpreadPercent(buy.Price, sell.Price)
			if !found || spread.GreaterThan(best.SpreadPercent) {
				best = SpreadQuote{
					Symbol:        buy.Symbol,
					BuyBroker:     buyBroker,
					SellBroker:    sellBroker,
					BuyPrice:      buy.Price,
					SellPrice:     sell.Price,
					SpreadPercent: spread,
				}
				found = true
			}
		}
	}
	return best, true
}
