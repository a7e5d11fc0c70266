package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"arbidash/business/pricing/domain"
	"arbidash/internal/logger"
)

type fakeProvider struct {
	name    domain.Broker
	records []domain.PriceRecord
	err     error
	delay   time.Duration
}

func (f *fakeProvider) Name() domain.Broker { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context) ([]domain.PriceRecord, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelInfo, "test", nil)
}

func fakeRecord(broker domain.Broker, price string) domain.PriceRecord {
	return domain.PriceRecord{
		Symbol:    "BTCUSD",
		Price:     decimal.RequireFromString(price),
		Broker:    broker,
		Timestamp: time.Now(),
	}
}

func TestAggregatorCollectAll(t *testing.T) {
	binance := &fakeProvider{
		name:    domain.BrokerBinance,
		records: []domain.PriceRecord{fakeRecord(domain.BrokerBinance, "100")},
	}
	coinbase := &fakeProvider{
		name:    domain.BrokerCoinbase,
		records: []domain.PriceRecord{fakeRecord(domain.BrokerCoinbase, "101")},
	}

	agg := NewAggregator(testLogger(), binance, coinbase)
	records, brokerErrs, err := agg.CollectAll(context.Background())
	if err != nil {
		t.Fatalf("CollectAll returned %v", err)
	}
	if len(brokerErrs) != 0 {
		t.Fatalf("CollectAll returned %d broker errors, want 0", len(brokerErrs))
	}

	if len(records) != 2 {
		t.Fatalf("CollectAll returned %d records, want 2", len(records))
	}
	// Results merge in provider registration order regardless of which
	// goroutine finished first.
	if records[0].Broker != domain.BrokerBinance || records[1].Broker != domain.BrokerCoinbase {
		t.Errorf("record order = %s, %s; want Binance, Coinbase", records[0].Broker, records[1].Broker)
	}
}

func TestAggregatorBrokerFailureIsolated(t *testing.T) {
	healthy := &fakeProvider{
		name:    domain.BrokerBinance,
		records: []domain.PriceRecord{fakeRecord(domain.BrokerBinance, "100")},
	}
	broken := &fakeProvider{
		name: domain.BrokerBittrex,
		err:  errors.New("connection refused"),
	}
	alsoHealthy := &fakeProvider{
		name:    domain.BrokerHuobi,
		records: []domain.PriceRecord{fakeRecord(domain.BrokerHuobi, "101")},
	}

	agg := NewAggregator(testLogger(), healthy, broken, alsoHealthy)
	records, brokerErrs, err := agg.CollectAll(context.Background())
	if err != nil {
		t.Fatalf("CollectAll returned %v, one broker failing must not fail the cycle", err)
	}

	if len(records) != 2 {
		t.Fatalf("CollectAll returned %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.Broker == domain.BrokerBittrex {
			t.Error("failed broker contributed records")
		}
	}
	if len(brokerErrs) != 1 {
		t.Fatalf("CollectAll returned %d broker errors, want 1", len(brokerErrs))
	}
	if brokerErrs[0].Broker != domain.BrokerBittrex {
		t.Errorf("broker error attributed to %s, want Bittrex", brokerErrs[0].Broker)
	}
	if !errors.Is(brokerErrs[0], broken.err) {
		t.Error("BrokerError does not unwrap to the provider error")
	}
}

func TestAggregatorAllBrokersFailing(t *testing.T) {
	agg := NewAggregator(testLogger(),
		&fakeProvider{name: domain.BrokerBinance, err: errors.New("down")},
		&fakeProvider{name: domain.BrokerCoinbase, err: errors.New("down")},
	)

	records, brokerErrs, err := agg.CollectAll(context.Background())
	if err != nil {
		t.Fatalf("CollectAll returned %v, want nil", err)
	}
	if len(records) != 0 {
		t.Errorf("CollectAll returned %d records, want 0", len(records))
	}
	if len(brokerErrs) != 2 {
		t.Errorf("CollectAll returned %d broker errors, want 2", len(brokerErrs))
	}
}

func TestAggregatorContextCancellation(t *testing.T) {
	slow := &fakeProvider{
		name:    domain.BrokerBinance,
		records: []domain.PriceRecord{fakeRecord(domain.BrokerBinance, "100")},
		delay:   5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	agg := NewAggregator(testLogger(), slow)

	done := make(chan struct{})
	var err error
	go func() {
		_, _, err = agg.CollectAll(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CollectAll did not return after cancellation")
	}

	if !errors.Is(err, context.Canceled) {
		t.Errorf("CollectAll returned %v, want context.Canceled", err)
	}
}
