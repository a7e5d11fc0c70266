package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"arbidash/business/arbitrage/domain"
	pricingApp "arbidash/business/pricing/app"
	pricingDomain "arbidash/business/pricing/domain"
	"arbidash/internal/logger"
)

type stubProvider struct {
	broker  pricingDomain.Broker
	priceFn func() decimal.Decimal
}

func (s *stubProvider) Name() pricingDomain.Broker { return s.broker }

func (s *stubProvider) Fetch(ctx context.Context) ([]pricingDomain.PriceRecord, error) {
	return []pricingDomain.PriceRecord{{
		Symbol:    "BTCUSD",
		Price:     s.priceFn(),
		Broker:    s.broker,
		Timestamp: time.Now().UTC(),
	}}, nil
}

type recordingReporter struct {
	mu            sync.Mutex
	opportunities []domain.Opportunity
	transactions  []domain.Transaction
	brokerErrors  []string
	panicOnce     bool
}

func (r *recordingReporter) Start(ctx context.Context) error { return nil }
func (r *recordingReporter) Stop() error                     { return nil }

func (r *recordingReporter) ReportOpportunity(opp *domain.Opportunity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panicOnce {
		r.panicOnce = false
		panic("reporter blew up")
	}
	r.opportunities = append(r.opportunities, *opp)
}

func (r *recordingReporter) ReportTransaction(tx *domain.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, *tx)
}

func (r *recordingReporter) ReportBrokerError(broker string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brokerErrors = append(r.brokerErrors, broker)
}

func (r *recordingReporter) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.opportunities), len(r.transactions)
}

func pollerLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelInfo, "test", nil)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func newTestPoller(t *testing.T, reporter Reporter, store *Store) *Poller {
	t.Helper()

	cheap := &stubProvider{
		broker:  pricingDomain.BrokerBinance,
		priceFn: func() decimal.Decimal { return decimal.NewFromInt(100) },
	}
	rich := &stubProvider{
		broker:  pricingDomain.BrokerCoinbase,
		priceFn: func() decimal.Decimal { return decimal.NewFromInt(102) },
	}
	agg := pricingApp.NewAggregator(pollerLogger(), cheap, rich)

	poller, err := NewPoller(agg, store, NewDetector(), reporter, 10*time.Millisecond, pollerLogger())
	if err != nil {
		t.Fatalf("NewPoller returned %v", err)
	}
	return poller
}

func TestPollerDetectsAndExecutes(t *testing.T) {
	reporter := &recordingReporter{}
	store := NewStore(domain.DefaultParams(), 0)
	poller := newTestPoller(t, reporter, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start returned %v", err)
	}
	defer poller.Stop()

	waitFor(t, 2*time.Second, func() bool {
		opps, txs := reporter.counts()
		return opps > 0 && txs > 0
	})

	// The 2% Binance->Coinbase spread clears the 0.4% threshold.
	if store.PriceCount() == 0 {
		t.Error("poller did not append prices to the store")
	}
	if len(store.Transactions()) != 1 {
		t.Errorf("ledger has %d transactions, want exactly 1 within the cooldown", len(store.Transactions()))
	}
	if poller.LastCycle().IsZero() {
		t.Error("LastCycle was not updated")
	}
}

func TestPollerCooldownLimitsExecutions(t *testing.T) {
	reporter := &recordingReporter{}
	params := domain.DefaultParams()
	params.Cooldown = time.Hour
	store := NewStore(params, 0)
	poller := newTestPoller(t, reporter, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start returned %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		opps, _ := reporter.counts()
		return opps >= 4
	})
	poller.Stop()

	// Many opportunities across cycles, but only the first execution
	// fits inside an hour-long cooldown.
	if got := len(store.Transactions()); got != 1 {
		t.Errorf("ledger has %d transactions, want 1", got)
	}
}

func TestPollerRecoversFromPanic(t *testing.T) {
	reporter := &recordingReporter{panicOnce: true}
	store := NewStore(domain.DefaultParams(), 0)
	poller := newTestPoller(t, reporter, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start returned %v", err)
	}
	defer poller.Stop()

	// The first cycle panics in the reporter; later cycles must still run.
	waitFor(t, 2*time.Second, func() bool {
		opps, _ := reporter.counts()
		return opps > 0
	})
}

func TestPollerStops(t *testing.T) {
	reporter := &recordingReporter{}
	store := NewStore(domain.DefaultParams(), 0)
	poller := newTestPoller(t, reporter, store)

	ctx, cancel := context.WithCancel(context.Background())
	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start returned %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return !poller.LastCycle().IsZero() })

	cancel()
	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}

func TestPollerHealthCheck(t *testing.T) {
	reporter := &recordingReporter{}
	store := NewStore(domain.DefaultParams(), 0)
	poller := newTestPoller(t, reporter, store)

	check := poller.HealthCheck(time.Minute)
	if healthy, _ := check(context.Background()); healthy {
		t.Error("health check passed before any cycle ran")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start returned %v", err)
	}
	defer poller.Stop()

	waitFor(t, 2*time.Second, func() bool { return !poller.LastCycle().IsZero() })

	if healthy, detail := check(context.Background()); !healthy {
		t.Errorf("health check failed after a cycle: %s", detail)
	}
}

type failingProvider struct {
	broker pricingDomain.Broker
}

func (f *failingProvider) Name() pricingDomain.Broker { return f.broker }

func (f *failingProvider) Fetch(ctx context.Context) ([]pricingDomain.PriceRecord, error) {
	return nil, errors.New("connection refused")
}

func TestPollerSurfacesBrokerErrors(t *testing.T) {
	reporter := &recordingReporter{}
	store := NewStore(domain.DefaultParams(), 0)

	healthy := &stubProvider{
		broker:  pricingDomain.BrokerBinance,
		priceFn: func() decimal.Decimal { return decimal.NewFromInt(100) },
	}
	broken := &failingProvider{broker: pricingDomain.BrokerHuobi}
	agg := pricingApp.NewAggregator(pollerLogger(), healthy, broken)

	poller, err := NewPoller(agg, store, NewDetector(), reporter, 10*time.Millisecond, pollerLogger())
	if err != nil {
		t.Fatalf("NewPoller returned %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start returned %v", err)
	}
	defer poller.Stop()

	waitFor(t, 2*time.Second, func() bool {
		reporter.mu.Lock()
		defer reporter.mu.Unlock()
		return len(reporter.brokerErrors) > 0
	})

	reporter.mu.Lock()
	broker := reporter.brokerErrors[0]
	reporter.mu.Unlock()
	if broker != pricingDomain.BrokerHuobi.String() {
		t.Errorf("broker error attributed to %s, want Huobi", broker)
	}

	// The healthy broker keeps contributing despite the outage.
	if store.PriceCount() == 0 {
		t.Error("healthy broker records were not stored")
	}
}
