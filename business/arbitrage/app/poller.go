package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	pricingApp "arbidash/business/pricing/app"
	"arbidash/internal/apperror"
	"arbidash/internal/logger"
)

const pollerTracerName = "arbitrage-poller"

// Poller drives the collect-detect-execute cycle at a fixed interval.
type Poller struct {
	aggregator *pricingApp.Aggregator
	store      *Store
	detector   *Detector
	reporter   Reporter
	logger     logger.LoggerInterface
	interval   time.Duration
	tracer     trace.Tracer

	cycleCounter       metric.Int64Counter
	opportunityCounter metric.Int64Counter
	executionCounter   metric.Int64Counter

	mu        sync.RWMutex
	lastCycle time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewPoller creates a Poller over the given collaborators.
func NewPoller(
	aggregator *pricingApp.Aggregator,
	store *Store,
	detector *Detector,
	reporter Reporter,
	interval time.Duration,
	log logger.LoggerInterface,
) (*Poller, error) {
	meter := otel.GetMeterProvider().Meter("arbitrage_poller")

	cycleCounter, err := meter.Int64Counter("poll_cycles_total",
		metric.WithDescription("Total number of completed poll cycles"))
	if err != nil {
		return nil, err
	}
	opportunityCounter, err := meter.Int64Counter("opportunities_detected_total",
		metric.WithDescription("Total number of detected arbitrage opportunities"))
	if err != nil {
		return nil, err
	}
	executionCounter, err := meter.Int64Counter("executions_simulated_total",
		metric.WithDescription("Total number of simulated executions"))
	if err != nil {
		return nil, err
	}

	return &Poller{
		aggregator:         aggregator,
		store:              store,
		detector:           detector,
		reporter:           reporter,
		logger:             log,
		interval:           interval,
		tracer:             otel.Tracer(pollerTracerName),
		cycleCounter:       cycleCounter,
		opportunityCounter: opportunityCounter,
		executionCounter:   executionCounter,
	}, nil
}

// Start begins the polling loop. It returns once the loop goroutine is
// running; use Stop or cancel the context to shut it down.
func (p *Poller) Start(ctx context.Context) error {
	p.logger.Info(ctx, "starting poller", "interval", p.interval.String())

	if p.reporter != nil {
		if err := p.reporter.Start(ctx); err != nil {
			return fmt.Errorf("failed to start reporter: %w", err)
		}
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)

	return nil
}

// Stop shuts down the polling loop and waits for the current cycle.
func (p *Poller) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	if p.reporter != nil {
		return p.reporter.Stop()
	}
	return nil
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First cycle immediately, then on the tick.
	p.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info(ctx, "poller stopping", "reason", ctx.Err().Error())
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle runs one collect-detect-execute pass. A panic in a cycle is
// logged and absorbed so the loop keeps running.
func (p *Poller) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			err := apperror.New(apperror.CodePollCycleFault,
				apperror.WithContext(fmt.Sprintf("%v", r)))
			p.logger.Error(ctx, "poll cycle panicked", "error", err.Error())
		}
	}()

	ctx, span := p.tracer.Start(ctx, "poller.cycle")
	defer span.End()

	records, brokerErrs, err := p.aggregator.CollectAll(ctx)
	if err != nil {
		// Only context cancellation reaches here.
		return
	}
	if p.reporter != nil {
		for _, be := range brokerErrs {
			p.reporter.ReportBrokerError(be.Broker.String(), be.Err)
		}
	}
	p.store.AppendPrices(records)

	history := p.store.PriceSnapshot()
	params := p.store.Params()
	opportunities := p.detector.Detect(history, params, time.Now().UTC())

	executed := 0
	for i := range opportunities {
		opp := opportunities[i]
		if p.reporter != nil {
			p.reporter.ReportOpportunity(&opp)
		}
		if tx, ok := p.store.Execute(opp); ok {
			executed++
			p.logger.Info(ctx, "simulated execution",
				"symbol", tx.Symbol,
				"buy_broker", tx.BuyBroker.String(),
				"sell_broker", tx.SellBroker.String(),
				"spread_pct", tx.SpreadPercent.StringFixed(4),
				"net_profit", tx.NetProfit.StringFixed(6))
			if p.reporter != nil {
				p.reporter.ReportTransaction(&tx)
			}
		}
	}

	p.mu.Lock()
	p.lastCycle = time.Now()
	p.mu.Unlock()

	span.SetAttributes(
		attribute.Int("records", len(records)),
		attribute.Int("opportunities", len(opportunities)),
		attribute.Int("executed", executed),
	)
	p.cycleCounter.Add(ctx, 1)
	p.opportunityCounter.Add(ctx, int64(len(opportunities)))
	p.executionCounter.Add(ctx, int64(executed))
}

// LastCycle returns the completion time of the most recent cycle.
func (p *Poller) LastCycle() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastCycle
}

// HealthCheck reports whether the poller has completed a cycle recently.
// Suitable for registration with the health server.
func (p *Poller) HealthCheck(staleAfter time.Duration) func(ctx context.Context) (bool, string) {
	return func(ctx context.Context) (bool, string) {
		last := p.LastCycle()
		if last.IsZero() {
			return false, "no poll cycle completed yet"
		}
		if age := time.Since(last); age > staleAfter {
			return false, fmt.Sprintf("last poll cycle %s ago", age.Round(time.Second))
		}
		return true, "polling"
	}
}
