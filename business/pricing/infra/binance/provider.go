// Package binance implements the Binance price provider.
package binance

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
	// Binance REST API
	BaseAPIURL     = "https://api.binance.com"
	tickerEndpoint = "/api/v3/ticker/24hr"

	tracerName  = "binance-provider"
	httpTimeout = 10 * time.Second
)

// Config holds configuration for the Binance provider.
type Config struct {
	BaseURL       string        // API base URL (empty = default)
	Timeout       time.Duration // Request timeout
	RatePerMinute int
}

// Provider fetches spot prices from Binance's 24hr ticker endpoint.
// Binance quotes the watchlist in USDT; prices are treated as USD.
type Provider struct {
	client    httpclient.Client
	breaker   *circuitbreaker.Breaker[[]domain.PriceRecord]
	limiter   *ratelimit.Limiter
	logger    logger.LoggerInterface
	tracer    trace.Tracer
	watchlist map[string]bool
	now       func() time.Time
}

// NewProvider creates a Binance provider watching the given canonical symbols.
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
		httpclient.WithProviderName("binance"),
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
		breaker:   circuitbreaker.New[[]domain.PriceRecord](circuitbreaker.DefaultConfig("binance")),
		limiter:   ratelimit.New(ratePerMinute),
		logger:    log,
		tracer:    tracer,
		watchlist: watch,
		now:       time.Now,
	}, nil
}

// Name identifies this provider.
func (p *Provider) Name() domain.Broker {
	return domain.BrokerBinance
}

// tickerEntry is a single market entry from the 24hr ticker response.
type tickerEntry struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
}

// Fetch retrieves the full ticker list and filters it down to the watchlist.
func (p *Provider) Fetch(ctx context.Context) ([]domain.PriceRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return p.breaker.Execute(func() ([]domain.PriceRecord, error) {
		return p.fetchTickers(ctx)
	})
}

func (p *Provider) fetchTickers(ctx context.Context) ([]domain.PriceRecord, error) {
	ctx, span := p.tracer.Start(ctx, "binance.fetch_tickers")
	defer span.End()

	var entries []tickerEntry
	resp, err := p.client.NewRequest(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "ticker_24hr")),
		httpclient.WithResponseErrorHandler(apiErrorHandler),
	).
		SetResult(&entries).
		Get(ctx, tickerEndpoint)

	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeBrokerConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("binance ticker request failed"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeBrokerAPIError,
			apperror.WithContext(fmt.Sprintf("binance HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if entries == nil {
		return nil, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext("binance ticker payload did not decode"))
	}

	observedAt := p.now().UTC()
	records := make([]domain.PriceRecord, 0, len(p.watchlist))
	for _, e := range entries {
		symbol := domain.CanonicalSymbol(e.Symbol)
		if symbol == "" || !p.watchlist[symbol] {
			continue
		}
		if e.LastPrice == "" {
			p.logger.Warn(ctx, "ticker entry missing price", "broker", "binance", "symbol", e.Symbol)
			continue
		}
		price, perr := decimal.NewFromString(e.LastPrice)
		if perr != nil || !price.IsPositive() {
			p.logger.Warn(ctx, "ticker entry has invalid price",
				"broker", "binance", "symbol", e.Symbol, "raw", e.LastPrice)
			continue
		}
		records = append(records, domain.PriceRecord{
			Symbol:    symbol,
			Price:     price,
			Broker:    domain.BrokerBinance,
			Timestamp: observedAt,
		})
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// apiError represents an error payload from the Binance API.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// apiErrorHandler parses Binance API error responses.
func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
