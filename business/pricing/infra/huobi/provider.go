// Package huobi implements the Huobi price provider.
package huobi

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
	// Huobi public REST API
	BaseAPIURL      = "https://api.huobi.pro"
	tickersEndpoint = "/market/tickers"

	tracerName  = "huobi-provider"
	httpTimeout = 10 * time.Second
)

// Config holds configuration for the Huobi provider.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

// Provider fetches close prices from Huobi's bulk tickers endpoint.
// Huobi pairs are lowercase and quoted in USDT; both are normalized.
type Provider struct {
	client    httpclient.Client
	breaker   *circuitbreaker.Breaker[[]domain.PriceRecord]
	limiter   *ratelimit.Limiter
	logger    logger.LoggerInterface
	tracer    trace.Tracer
	watchlist map[string]bool
	now       func() time.Time
}

// NewProvider creates a Huobi provider watching the given canonical symbols.
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
		httpclient.WithProviderName("huobi"),
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
		breaker:   circuitbreaker.New[[]domain.PriceRecord](circuitbreaker.DefaultConfig("huobi")),
		limiter:   ratelimit.New(ratePerMinute),
		logger:    log,
		tracer:    tracer,
		watchlist: watch,
		now:       time.Now,
	}, nil
}

// Name identifies this provider.
func (p *Provider) Name() domain.Broker {
	return domain.BrokerHuobi
}

// tickersResponse is the bulk tickers payload, e.g.
// {"status":"ok","ts":1697040000000,"data":[{"symbol":"btcusdt","close":64190.2}]}.
type tickersResponse struct {
	Status string        `json:"status"`
	ErrMsg string        `json:"err-msg"`
	Data   []tickerEntry `json:"data"`
}

type tickerEntry struct {
	Symbol string      `json:"symbol"`
	Close  json.Number `json:"close"`
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
	ctx, span := p.tracer.Start(ctx, "huobi.fetch_tickers")
	defer span.End()

	var result tickersResponse
	resp, err := p.client.NewRequest(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "market_tickers")),
	).
		SetResult(&result).
		Get(ctx, tickersEndpoint)

	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeBrokerConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("huobi tickers request failed"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeBrokerAPIError,
			apperror.WithContext(fmt.Sprintf("huobi HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if result.Status != "ok" {
		return nil, apperror.New(apperror.CodeBrokerAPIError,
			apperror.WithContext(fmt.Sprintf("huobi status %q: %s", result.Status, result.ErrMsg)))
	}

	if result.Data == nil {
		return nil, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext("huobi tickers payload did not decode"))
	}

	observedAt := p.now().UTC()
	records := make([]domain.PriceRecord, 0, len(p.watchlist))
	for _, t := range result.Data {
		symbol := domain.CanonicalSymbol(t.Symbol)
		if symbol == "" || !p.watchlist[symbol] {
			continue
		}
		if t.Close == "" {
			p.logger.Warn(ctx, "ticker entry missing price", "broker", "huobi", "symbol", t.Symbol)
			continue
		}
		price, perr := decimal.NewFromString(t.Close.String())
		if perr != nil || !price.IsPositive() {
			p.logger.Warn(ctx, "ticker entry has invalid price",
				"broker", "huobi", "symbol", t.Symbol, "raw", t.Close.String())
			continue
		}
		records = append(records, domain.PriceRecord{
			Symbol:    symbol,
			Price:     price,
			Broker:    domain.BrokerHuobi,
			Timestamp: observedAt,
		})
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
