package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"arbidash/business/arbitrage/domain"
	pricingDomain "arbidash/business/pricing/domain"
)

func opportunity(profit string) domain.Opportunity {
	return domain.Opportunity{
		Symbol:        "BTCUSD",
		BuyBroker:     pricingDomain.BrokerBinance,
		SellBroker:    pricingDomain.BrokerCoinbase,
		BuyPrice:      decimal.NewFromInt(100),
		SellPrice:     decimal.NewFromInt(102),
		SpreadPercent: decimal.NewFromInt(2),
		NetProfit:     decimal.RequireFromString(profit),
	}
}

func TestStoreCooldownGate(t *testing.T) {
	params := domain.DefaultParams()
	params.Cooldown = 30 * time.Second

	store := NewStore(params, 0)
	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	// First execution always passes.
	if _, ok := store.Execute(opportunity("1.697")); !ok {
		t.Fatal("first execution was rejected")
	}

	// Within the window every attempt is rejected.
	clock = clock.Add(10 * time.Second)
	if _, ok := store.Execute(opportunity("1.697")); ok {
		t.Error("execution accepted 10s into a 30s cooldown")
	}
	clock = clock.Add(19 * time.Second)
	if _, ok := store.Execute(opportunity("1.697")); ok {
		t.Error("execution accepted 29s into a 30s cooldown")
	}

	// At exactly the cooldown boundary the window has elapsed.
	clock = clock.Add(time.Second)
	if _, ok := store.Execute(opportunity("1.697")); !ok {
		t.Error("execution rejected at the cooldown boundary")
	}

	if got := len(store.Transactions()); got != 2 {
		t.Errorf("ledger has %d transactions, want 2", got)
	}
	if got := store.LastExecuted(); !got.Equal(clock) {
		t.Errorf("LastExecuted = %v, want %v", got, clock)
	}
}

func TestStoreCooldownSharedAcrossSymbols(t *testing.T) {
	params := domain.DefaultParams()
	store := NewStore(params, 0)
	clock := time.Now()
	store.now = func() time.Time { return clock }

	if _, ok := store.Execute(opportunity("1")); !ok {
		t.Fatal("first execution was rejected")
	}

	other := opportunity("2")
	other.Symbol = "ETHUSD"
	if _, ok := store.Execute(other); ok {
		t.Error("cooldown must be global, not per symbol")
	}
}

func TestStoreTotalGain(t *testing.T) {
	params := domain.DefaultParams()
	params.Cooldown = 0

	store := NewStore(params, 0)
	clock := time.Now()
	store.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	store.Execute(opportunity("1.697"))
	store.Execute(opportunity("-0.3"))
	store.Execute(opportunity("0.5"))

	want := decimal.RequireFromString("1.897")
	if got := store.TotalGain(); !got.Equal(want) {
		t.Errorf("TotalGain = %s, want %s", got, want)
	}
}

func TestStoreHistoryCap(t *testing.T) {
	store := NewStore(domain.DefaultParams(), 3)

	base := time.Now()
	batch := func(p string, at time.Time) []pricingDomain.PriceRecord {
		return []pricingDomain.PriceRecord{{
			Symbol:    "BTCUSD",
			Price:     decimal.RequireFromString(p),
			Broker:    pricingDomain.BrokerBinance,
			Timestamp: at,
		}}
	}

	store.AppendPrices(batch("1", base))
	store.AppendPrices(batch("2", base.Add(time.Second)))
	store.AppendPrices(batch("3", base.Add(2*time.Second)))
	store.AppendPrices(batch("4", base.Add(3*time.Second)))

	snapshot := store.PriceSnapshot()
	if len(snapshot) != 3 {
		t.Fatalf("snapshot has %d records, want 3", len(snapshot))
	}
	// Oldest record is dropped first.
	if !snapshot[0].Price.Equal(decimal.NewFromInt(2)) {
		t.Errorf("oldest retained price = %s, want 2", snapshot[0].Price)
	}
	if !snapshot[2].Price.Equal(decimal.NewFromInt(4)) {
		t.Errorf("newest retained price = %s, want 4", snapshot[2].Price)
	}
}

func TestStoreUnboundedHistory(t *testing.T) {
	store := NewStore(domain.DefaultParams(), 0)

	records := make([]pricingDomain.PriceRecord, 100)
	for i := range records {
		records[i] = pricingDomain.PriceRecord{
			Symbol:    "BTCUSD",
			Price:     decimal.NewFromInt(int64(i + 1)),
			Broker:    pricingDomain.BrokerBinance,
			Timestamp: time.Now(),
		}
	}
	store.AppendPrices(records)
	store.AppendPrices(records)

	if got := store.PriceCount(); got != 200 {
		t.Errorf("PriceCount = %d, want 200", got)
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	store := NewStore(domain.DefaultParams(), 0)
	store.AppendPrices([]pricingDomain.PriceRecord{{
		Symbol:    "BTCUSD",
		Price:     decimal.NewFromInt(100),
		Broker:    pricingDomain.BrokerBinance,
		Timestamp: time.Now(),
	}})

	snapshot := store.PriceSnapshot()
	snapshot[0].Price = decimal.NewFromInt(999)

	if !store.PriceSnapshot()[0].Price.Equal(decimal.NewFromInt(100)) {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestStoreSetParams(t *testing.T) {
	store := NewStore(domain.DefaultParams(), 0)

	updated := domain.DefaultParams()
	updated.MinSpreadPercent = decimal.RequireFromString("0.8")
	if err := store.SetParams(updated); err != nil {
		t.Fatalf("SetParams returned %v", err)
	}
	if !store.Params().MinSpreadPercent.Equal(decimal.RequireFromString("0.8")) {
		t.Error("SetParams did not apply")
	}

	invalid := domain.DefaultParams()
	invalid.FeePercent = decimal.NewFromInt(-1)
	if err := store.SetParams(invalid); err == nil {
		t.Error("SetParams accepted a negative fee")
	}
	if store.Params().FeePercent.IsNegative() {
		t.Error("rejected params must not be applied")
	}
}
