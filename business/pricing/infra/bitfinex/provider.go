// Package bitfinex implements the Bitfinex price provider.
package bitfinex

import (
	"context"
	"encoding/json"
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
	// Bitfinex public REST API
	BaseAPIURL = "https://api-pub.bitfinex.com"

	// Index of LAST_PRICE in the positional ticker array.
	lastPriceIndex = 6

	tracerName  = "bitfinex-provider"
	httpTimeout = 10 * time.Second
)

// Config holds configuration for the Bitfinex provider.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

// Provider fetches last-trade prices from Bitfinex. Tickers are served
// as positional arrays per trading pair, one request per pair.
type Provider struct {
	client  httpclient.Client
	breaker *circuitbreaker.Breaker[domain.PriceRecord]
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	symbols []string // canonical symbols in watchlist order
	now     func() time.Time
}

// NewProvider creates a Bitfinex provider watching the given canonical symbols.
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
		httpclient.WithProviderName("bitfinex"),
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

	symbols := make([]string, len(watchlist))
	copy(symbols, watchlist)

	return &Provider{
		client:  client,
		breaker: circuitbreaker.New[domain.PriceRecord](circuitbreaker.DefaultConfig("bitfinex")),
		limiter: ratelimit.New(ratePerMinute),
		logger:  log,
		tracer:  tracer,
		symbols: symbols,
		now:     time.Now,
	}, nil
}

// Name identifies this provider.
func (p *Provider) Name() domain.Broker {
	return domain.BrokerBitfinex
}

// Fetch retrieves a ticker per watchlist symbol. Failing symbols are
// logged and skipped; when every symbol fails the broker is down and
// the error surfaces.
func (p *Provider) Fetch(ctx context.Context) ([]domain.PriceRecord, error) {
	ctx, span := p.tracer.Start(ctx, "bitfinex.fetch_tickers")
	defer span.End()

	var firstErr error
	records := make([]domain.PriceRecord, 0, len(p.symbols))
	for _, symbol := range p.symbols {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		record, err := p.breaker.Execute(func() (domain.PriceRecord, error) {
			return p.fetchTicker(ctx, symbol)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn(ctx, "ticker fetch failed",
				"broker", "bitfinex", "symbol", symbol, "error", err.Error())
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

// fetchTicker fetches /v2/ticker/t{SYMBOL}. The payload is a positional
// array [BID, BID_SIZE, ASK, ASK_SIZE, DAILY_CHANGE, DAILY_CHANGE_REL,
// LAST_PRICE, VOLUME, HIGH, LOW].
func (p *Provider) fetchTicker(ctx context.Context, symbol string) (domain.PriceRecord, error) {
	var fields []json.Number

	resp, err := p.client.NewRequest(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "ticker"),
			httpclient.NewLabel("symbol", symbol),
		),
	).
		SetResult(&fields).
		Get(ctx, "/v2/ticker/t"+symbol)

	if err != nil {
		return domain.PriceRecord{}, apperror.New(apperror.CodeBrokerConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("bitfinex ticker request failed"))
	}

	if resp.IsError() {
		return domain.PriceRecord{}, apperror.New(apperror.CodeBrokerAPIError,
			apperror.WithContext(fmt.Sprintf("bitfinex HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if len(fields) <= lastPriceIndex {
		return domain.PriceRecord{}, apperror.New(apperror.CodeMissingPriceField,
			apperror.WithContext(fmt.Sprintf("bitfinex ticker for %s has %d fields", symbol, len(fields))))
	}

	price, err := decimal.NewFromString(fields[lastPriceIndex].String())
	if err != nil || !price.IsPositive() {
		return domain.PriceRecord{}, apperror.New(apperror.CodeInvalidPrice,
			apperror.WithContext(fmt.Sprintf("bitfinex last price %q for %s", fields[lastPriceIndex], symbol)))
	}

	return domain.PriceRecord{
		Symbol:    symbol,
		Price:     price,
		Broker:    domain.BrokerBitfinex,
		Timestamp: p.now().UTC(),
	}, nil
}
