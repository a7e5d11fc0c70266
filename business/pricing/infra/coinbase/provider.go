// Package coinbase implements the Coinbase price provider.
package coinbase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"arbidash/business/pricing/domain"
	"arbidash/internal/apperror"
	"arbidash/internal/circuitbreaker"
	"arbidash/internal/httpclient"
	"arbidash/internal/logger"
	"arbidash/internal/ratelimit"
)

const (
	// Coinbase public data API
	BaseAPIURL = "https://api.coinbase.com"

	tracerName  = "coinbase-provider"
	httpTimeout = 10 * time.Second
)

// Config holds configuration for the Coinbase provider.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

// Provider fetches spot prices from Coinbase. The spot endpoint serves
// one pair per request, so a fetch issues one call per watchlist asset.
type Provider struct {
	client  httpclient.Client
	breaker *circuitbreaker.Breaker[domain.PriceRecord]
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	assets  []string // base assets in watchlist order
	now     func() time.Time
}

// NewProvider creates a Coinbase provider watching the given canonical symbols.
func NewProvider(cfg Config, watchlist []string, log logger.LoggerInterface) (*Provider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	ratePerMinute := cfg.RatePerMinute
	if ratePerMinute == 0 {
		ratePerMinute = 600
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("coinbase"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTracer(tracer),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	assets := make([]string, 0, len(watchlist))
	for _, s := range watchlist {
		assets = append(assets, domain.BaseAsset(s))
	}

	return &Provider{
		client:  client,
		breaker: circuitbreaker.New[domain.PriceRecord](circuitbreaker.DefaultConfig("coinbase")),
		limiter: ratelimit.New(ratePerMinute),
		logger:  log,
		tracer:  tracer,
		assets:  assets,
		now:     time.Now,
	}, nil
}

// Name identifies this provider.
func (p *Provider) Name() domain.Broker {
	return domain.BrokerCoinbase
}

// spotResponse is the spot price payload, e.g.
// {"data":{"base":"BTC","currency":"USD","amount":"64210.55"}}.
type spotResponse struct {
	Data struct {
		Base     string `json:"base"`
		Currency string `json:"currency"`
		Amount   string `json:"amount"`
	} `json:"data"`
}

// Fetch retrieves a spot price per watchlist asset. A failing asset is
// logged and skipped so one bad pair cannot blank the whole broker, but
// when every asset fails the broker is down and the error surfaces.
func (p *Provider) Fetch(ctx context.Context) ([]domain.PriceRecord, error) {
	ctx, span := p.tracer.Start(ctx, "coinbase.fetch_spot_prices")
	defer span.End()

	var firstErr error
	records := make([]domain.PriceRecord, 0, len(p.assets))
	for _, asset := range p.assets {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		record, err := p.breaker.Execute(func() (domain.PriceRecord, error) {
			return p.fetchSpot(ctx, asset)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn(ctx, "spot price fetch failed",
				"broker", "coinbase", "asset", asset, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 && firstErr != nil {
		return nil, firstErr
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func (p *Provider) fetchSpot(ctx context.Context, asset string) (domain.PriceRecord, error) {
	var result spotResponse
	pair := asset + "-" + domain.QuoteCurrency

	resp, err := p.client.NewRequest(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "spot"),
			httpclient.NewLabel("pair", pair),
		),
	).
		SetResult(&result).
		Get(ctx, fmt.Sprintf("/v2/prices/%s/spot", pair))

	if err != nil {
		return domain.PriceRecord{}, apperror.New(apperror.CodeBrokerConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("coinbase spot request failed"))
	}

	if resp.IsError() {
		return domain.PriceRecord{}, apperror.New(apperror.CodeBrokerAPIError,
			apperror.WithContext(fmt.Sprintf("coinbase HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if result.Data.Amount == "" {
		return domain.PriceRecord{}, apperror.New(apperror.CodeMissingPriceField,
			apperror.WithContext(fmt.Sprintf("coinbase spot payload for %s has no amount", pair)))
	}

	price, err := decimal.NewFromString(result.Data.Amount)
	if err != nil || !price.IsPositive() {
		return domain.PriceRecord{}, apperror.New(apperror.CodeInvalidPrice,
			apperror.WithContext(fmt.Sprintf("coinbase amount %q for %s", result.Data.Amount, pair)))
	}

	return domain.PriceRecord{
		Symbol:    domain.CanonicalSymbol(pair),
		Price:     price,
		Broker:    domain.BrokerCoinbase,
		Timestamp: p.now().UTC(),
	}, nil
}
