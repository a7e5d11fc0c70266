package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"arbidash/business/pricing/domain"
	"arbidash/internal/apperror"
	"arbidash/internal/logger"
)

// BrokerError attributes a fetch failure to the broker that produced it.
type BrokerError struct {
	Broker domain.Broker
	Err    error
}

func (e BrokerError) Error() string {
	return e.Broker.String() + ": " + e.Err.Error()
}

func (e BrokerError) Unwrap() error {
	return e.Err
}

// Aggregator fans a fetch out to every provider and merges the results.
// A failing broker never fails the whole collection cycle.
type Aggregator struct {
	providers []Provider
	log       logger.LoggerInterface
}

// NewAggregator creates an Aggregator over the given providers.
func NewAggregator(log logger.LoggerInterface, providers ...Provider) *Aggregator {
	return &Aggregator{
		providers: providers,
		log:       log,
	}
}

// Providers returns the configured providers.
func (a *Aggregator) Providers() []Provider {
	return a.providers
}

// CollectAll fetches prices from every provider concurrently and returns
// the merged records grouped per provider in registration order, plus one
// BrokerError per failing broker. Failures are logged and do not abort the
// collection; the error is non-nil only when the context is cancelled.
func (a *Aggregator) CollectAll(ctx context.Context) ([]domain.PriceRecord, []BrokerError, error) {
	results := make([][]domain.PriceRecord, len(a.providers))
	failures := make([]*BrokerError, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			records, err := p.Fetch(gctx)
			if err != nil {
				a.log.Warn(gctx, "broker fetch failed",
					"broker", p.Name().String(),
					"code", string(apperror.GetCode(err)),
					"error", err.Error())
				failures[i] = &BrokerError{Broker: p.Name(), Err: err}
				return nil
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var merged []domain.PriceRecord
	for _, records := range results {
		merged = append(merged, records...)
	}
	var brokerErrs []BrokerError
	for _, f := range failures {
		if f != nil {
			brokerErrs = append(brokerErrs, *f)
		}
	}
	return merged, brokerErrs, nil
}
