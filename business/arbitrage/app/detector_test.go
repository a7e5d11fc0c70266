package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"arbidash/business/arbitrage/domain"
	pricingDomain "arbidash/business/pricing/domain"
)

func price(symbol string, broker pricingDomain.Broker, p string, at time.Time) pricingDomain.PriceRecord {
	return pricingDomain.PriceRecord{
		Symbol:    symbol,
		Price:     decimal.RequireFromString(p),
		Broker:    broker,
		Timestamp: at,
	}
}

func testParams(minSpread string) domain.Params {
	p := domain.DefaultParams()
	p.MinSpreadPercent = decimal.RequireFromString(minSpread)
	return p
}

func TestDetectorBasicSpread(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	history := []pricingDomain.PriceRecord{
		price("BTCUSD", pricingDomain.BrokerBinance, "100", base),
		price("BTCUSD", pricingDomain.BrokerCoinbase, "102", base),
	}

	opps := NewDetector().Detect(history, testParams("0.4"), base)

	// Binance->Coinbase is +2%; the reverse direction is -1.96% and
	// must be filtered by the threshold.
	if len(opps) != 1 {
		t.Fatalf("Detect returned %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	if opp.BuyBroker != pricingDomain.BrokerBinance || opp.SellBroker != pricingDomain.BrokerCoinbase {
		t.Errorf("pair = %s->%s, want Binance->Coinbase", opp.BuyBroker, opp.SellBroker)
	}
	if !opp.SpreadPercent.Equal(decimal.NewFromInt(2)) {
		t.Errorf("SpreadPercent = %s, want 2", opp.SpreadPercent)
	}
	// 102*0.9985 - 100*1.0015 = 101.847 - 100.15
	if !opp.NetProfit.Equal(decimal.RequireFromString("1.697")) {
		t.Errorf("NetProfit = %s, want 1.697", opp.NetProfit)
	}
	if !opp.DetectedAt.Equal(base) {
		t.Errorf("DetectedAt = %s, want %s", opp.DetectedAt, base)
	}
}

func TestDetectorThresholdInclusive(t *testing.T) {
	base := time.Now().UTC()
	history := []pricingDomain.PriceRecord{
		price("BTCUSD", pricingDomain.BrokerBinance, "100", base),
		price("BTCUSD", pricingDomain.BrokerCoinbase, "100.4", base),
	}

	// Spread is exactly 0.4%, which must be detected.
	opps := NewDetector().Detect(history, testParams("0.4"), base)
	if len(opps) != 1 {
		t.Fatalf("Detect returned %d opportunities at the boundary, want 1", len(opps))
	}

	// Just under the threshold must not be.
	history[1].Price = decimal.RequireFromString("100.39")
	opps = NewDetector().Detect(history, testParams("0.4"), base)
	if len(opps) != 0 {
		t.Fatalf("Detect returned %d opportunities below the boundary, want 0", len(opps))
	}
}

func TestDetectorNegativeProfitStillEmitted(t *testing.T) {
	base := time.Now().UTC()
	history := []pricingDomain.PriceRecord{
		price("BTCUSD", pricingDomain.BrokerBinance, "100", base),
		price("BTCUSD", pricingDomain.BrokerCoinbase, "100.4", base),
	}

	// 0.4% spread clears the threshold but a 0.3% round-trip fee
	// leaves a loss; the opportunity is still reported.
	opps := NewDetector().Detect(history, testParams("0.4"), base)
	if len(opps) != 1 {
		t.Fatalf("Detect returned %d opportunities, want 1", len(opps))
	}
	if opps[0].NetProfit.IsPositive() {
		t.Errorf("NetProfit = %s, want negative", opps[0].NetProfit)
	}
	if opps[0].IsProfitable() {
		t.Error("IsProfitable() = true, want false")
	}
}

func TestDetectorExclusions(t *testing.T) {
	base := time.Now().UTC()

	t.Run("same_broker_never_pairs", func(t *testing.T) {
		history := []pricingDomain.PriceRecord{
			price("BTCUSD", pricingDomain.BrokerBinance, "100", base),
			price("BTCUSD", pricingDomain.BrokerBinance, "110", base.Add(time.Second)),
		}
		opps := NewDetector().Detect(history, testParams("0.4"), base)
		if len(opps) != 0 {
			t.Errorf("Detect returned %d opportunities for one broker, want 0", len(opps))
		}
	})

	t.Run("different_symbols_never_pair", func(t *testing.T) {
		history := []pricingDomain.PriceRecord{
			price("BTCUSD", pricingDomain.BrokerBinance, "100", base),
			price("ETHUSD", pricingDomain.BrokerCoinbase, "110", base),
		}
		opps := NewDetector().Detect(history, testParams("0.4"), base)
		if len(opps) != 0 {
			t.Errorf("Detect returned %d opportunities across symbols, want 0", len(opps))
		}
	})

	t.Run("non_positive_prices_skipped", func(t *testing.T) {
		history := []pricingDomain.PriceRecord{
			price("BTCUSD", pricingDomain.BrokerBinance, "0", base),
			price("BTCUSD", pricingDomain.BrokerCoinbase, "102", base),
		}
		opps := NewDetector().Detect(history, testParams("0.4"), base)
		if len(opps) != 0 {
			t.Errorf("Detect returned %d opportunities with a zero price, want 0", len(opps))
		}
	})
}

func TestDetectorScansFullHistory(t *testing.T) {
	base := time.Now().UTC()

	// A stale Binance quote pairs with a fresh Coinbase quote: the
	// detector scans everything it is given, not just the latest tick.
	history := []pricingDomain.PriceRecord{
		price("BTCUSD", pricingDomain.BrokerBinance, "100", base.Add(-time.Minute)),
		price("BTCUSD", pricingDomain.BrokerBinance, "101.9", base),
		price("BTCUSD", pricingDomain.BrokerCoinbase, "102", base),
	}

	opps := NewDetector().Detect(history, testParams("0.4"), base)

	// Stale 100 -> 102 (2%) and stale 100 -> fresh 101.9 would be same
	// broker; expected: 100->102 only, since 101.9->102 is under 0.4%.
	if len(opps) != 1 {
		t.Fatalf("Detect returned %d opportunities, want 1", len(opps))
	}
	if !opps[0].BuyPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("BuyPrice = %s, want the stale 100 quote", opps[0].BuyPrice)
	}
}

func TestDetectorDeterministicOrder(t *testing.T) {
	base := time.Now().UTC()
	history := []pricingDomain.PriceRecord{
		price("BTCUSD", pricingDomain.BrokerBinance, "100", base),
		price("BTCUSD", pricingDomain.BrokerCoinbase, "102", base),
		price("BTCUSD", pricingDomain.BrokerBitfinex, "101", base),
	}

	first := NewDetector().Detect(history, testParams("0.4"), base)
	second := NewDetector().Detect(history, testParams("0.4"), base)

	if len(first) != len(second) {
		t.Fatalf("runs disagree on count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].BuyBroker != second[i].BuyBroker || first[i].SellBroker != second[i].SellBroker {
			t.Errorf("opportunity %d differs between runs: %s->%s vs %s->%s",
				i, first[i].BuyBroker, first[i].SellBroker, second[i].BuyBroker, second[i].SellBroker)
		}
	}
}
