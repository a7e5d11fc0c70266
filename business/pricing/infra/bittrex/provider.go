// Package bittrex implements the Bittrex price provider.
package bittrex

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
	// Bittrex v3 REST API. Responses arrive with a UTF-8 BOM prefix,
	// which the shared HTTP client strips before decoding.
	BaseAPIURL      = "https://api.bittrex.com"
	tickersEndpoint = "/v3/markets/tickers"

	tracerName  = "bittrex-provider"
	httpTimeout = 10 * time.Second
)

// Config holds configuration for the Bittrex provider.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

// Provider fetches last-trade prices from Bittrex's bulk tickers endpoint.
type Provider struct {
	client    httpclient.Client
	breaker   *circuitbreaker.Breaker[[]domain.PriceRecord]
	limiter   *ratelimit.Limiter
	logger    logger.LoggerInterface
	tracer    trace.Tracer
	watchlist map[string]bool
	now       func() time.Time
}

// NewProvider creates a Bittrex provider watching the given canonical symbols.
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
		httpclient.WithProviderName("bittrex"),
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

	watch := make(map[string]bool, len(watchlist))
	for _, s := range watchlist {
		watch[s] = true
	}

	return &Provider{
		client:    client,
		breaker:   circuitbreaker.New[[]domain.PriceRecord](circuitbreaker.DefaultConfig("bittrex")),
		limiter:   ratelimit.New(ratePerMinute),
		logger:    log,
		tracer:    tracer,
		watchlist: watch,
		now:       time.Now,
	}, nil
}

// Name identifies this provider.
func (p *Provider) Name() domain.Broker {
	return domain.BrokerBittrex
}

// marketTicker is one entry of the bulk tickers response, e.g.
// {"symbol":"BTC-USD","lastTradeRate":"64190.21","bidRate":"...","askRate":"..."}.
type marketTicker struct {
	Symbol        string `json:"symbol"`
	LastTradeRate string `json:"lastTradeRate"`
}

// Fetch retrieves every market ticker and filters it to the watchlist.
func (p *Provider) Fetch(ctx context.Context) ([]domain.PriceRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return p.breaker.Execute(func() ([]domain.PriceRecord, error) {
		return p.fetchTickers(ctx)
	})
}

func (p *Provider) fetchTickers(ctx context.Context) ([]domain.PriceRecord, error) {
	ctx, span := p.tracer.Start(ctx, "bittrex.fetch_tickers")
	defer span.End()

	var tickers []marketTicker
	resp, err := p.client.NewRequest(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "market_tickers")),
	).
		SetResult(&tickers).
		Get(ctx, tickersEndpoint)

	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeBrokerConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("bittrex tickers request failed"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeBrokerAPIError,
			apperror.WithContext(fmt.Sprintf("bittrex HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if tickers == nil {
		return nil, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext("bittrex tickers payload did not decode"))
	}

	observedAt := p.now().UTC()
	records := make([]domain.PriceRecord, 0, len(p.watchlist))
	for _, t := range tickers {
		symbol := domain.CanonicalSymbol(t.Symbol)
		if symbol == "" || !p.watchlist[symbol] {
			continue
		}
		if t.LastTradeRate == "" {
			p.logger.Warn(ctx, "ticker entry missing price", "broker", "bittrex", "symbol", t.Symbol)
			continue
		}
		price, perr := decimal.NewFromString(t.LastTradeRate)
		if perr != nil || !price.IsPositive() {
			p.logger.Warn(ctx, "ticker entry has invalid price",
				"broker", "bittrex", "symbol", t.Symbol, "raw", t.LastTradeRate)
			continue
		}
		records = append(records, domain.PriceRecord{
			Symbol:    symbol,
			Price:     price,
			Broker:    domain.BrokerBittrex,
			Timestamp: observedAt,
		})
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
