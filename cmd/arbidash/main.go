// Command arbidash runs the cross-exchange arbitrage dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"

	arbApp "arbidash/business/arbitrage/app"
	arbDomain "arbidash/business/arbitrage/domain"
	arbInfra "arbidash/business/arbitrage/infra"
	pricingApp "arbidash/business/pricing/app"
	pricingDomain "arbidash/business/pricing/domain"
	"arbidash/business/pricing/infra/binance"
	"arbidash/business/pricing/infra/bitfinex"
	"arbidash/business/pricing/infra/bittrex"
	"arbidash/business/pricing/infra/coinbase"
	"arbidash/business/pricing/infra/huobi"
	"arbidash/internal/apm"
	"arbidash/internal/config"
	"arbidash/internal/health"
	"arbidash/internal/logger"
	"arbidash/internal/metrics"
	"arbidash/pkg/ui"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional, used in local development.
	_ = godotenv.Load()

	var (
		configPath  = flag.String("config", "", "path to config file")
		cliMode     = flag.Bool("cli", false, "run without the TUI, logging to stdout")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbidash %s\n", version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.Arbitrage.TUIMode = !*cliMode

	// In TUI mode logs would corrupt the alternate screen.
	var logOut io.Writer = os.Stdout
	if cfg.Arbitrage.TUIMode {
		logOut = io.Discard
	}

	traceIDFn := func(ctx context.Context) string {
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			return sc.TraceID().String()
		}
		return ""
	}
	log := logger.New(logOut, parseLogLevel(cfg.App.LogLevel), cfg.App.Name, traceIDFn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		traceProvider := apm.NewTraceProvider(log,
			apm.WithProvider(parseTraceProvider(cfg.Telemetry.TraceProvider), log))
		defer traceProvider.Stop()

		metricOpts := []metrics.OptionFn{
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			metricOpts = append(metricOpts,
				metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(cfg.Telemetry.OTLPEndpoint, nil, true)))
		}
		meterProvider := metrics.NewMetricProvider(metricOpts...)
		defer meterProvider.Shutdown(context.Background())

		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(cfg.Telemetry.PrometheusPort)))
	}

	watchlist := pricingDomain.WatchlistSymbols(cfg.Arbitrage.Watchlist)

	providers, err := buildProviders(cfg, watchlist, log)
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		return fmt.Errorf("no brokers enabled")
	}

	aggregator := pricingApp.NewAggregator(log, providers...)

	params := arbDomain.Params{
		FeePercent:       cfg.Arbitrage.FeePercentDecimal(),
		CapitalInvested:  cfg.Arbitrage.CapitalInvestedDecimal(),
		Cooldown:         cfg.Arbitrage.Cooldown(),
		MinSpreadPercent: cfg.Arbitrage.MinSpreadPercentDecimal(),
	}
	if err := params.Validate(); err != nil {
		return err
	}

	store := arbApp.NewStore(params, cfg.Arbitrage.MaxHistory)
	detector := arbApp.NewDetector()

	// The program must exist before the poller starts so the reporter's
	// sends never race its construction.
	var program *tea.Program
	var reporter arbApp.Reporter
	if cfg.Arbitrage.TUIMode {
		program = ui.NewProgram(store, watchlist)
		reporter = arbInfra.NewTUIReporter(program)
	} else {
		reporter = arbInfra.NewConsoleReporter()
	}

	poller, err := arbApp.NewPoller(aggregator, store, detector, reporter, cfg.Arbitrage.PollInterval, log)
	if err != nil {
		return err
	}

	healthServer := health.NewServer(cfg.App.HealthPort, version)
	healthServer.RegisterCheck("poller", poller.HealthCheck(3*cfg.Arbitrage.PollInterval+5*time.Second))
	if err := healthServer.Start(); err != nil {
		return err
	}
	defer healthServer.Stop(context.Background())

	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	if cfg.Arbitrage.TUIMode {
		// Bubble Tea owns the terminal on the main goroutine. Quitting
		// the dashboard shuts the rest down via the deferred stops.
		go func() {
			<-ctx.Done()
			program.Quit()
		}()
		_, err := program.Run()
		return err
	}

	log.Info(ctx, "running in CLI mode", "brokers", len(providers), "symbols", len(watchlist))
	<-ctx.Done()
	log.Info(context.Background(), "shutting down")
	return nil
}

// buildProviders constructs one provider per enabled broker.
func buildProviders(cfg *config.Config, watchlist []string, log logger.LoggerInterface) ([]pricingApp.Provider, error) {
	var providers []pricingApp.Provider

	timeout := cfg.Brokers.RequestTimeout
	rate := cfg.Brokers.RatePerMinute

	if cfg.Brokers.Binance.Enabled {
		p, err := binance.NewProvider(binance.Config{
			BaseURL:       cfg.Brokers.Binance.BaseURL,
			Timeout:       timeout,
			RatePerMinute: rate,
		}, watchlist, log)
		if err != nil {
			return nil, fmt.Errorf("binance provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.Brokers.Coinbase.Enabled {
		p, err := coinbase.NewProvider(coinbase.Config{
			BaseURL:       cfg.Brokers.Coinbase.BaseURL,
			Timeout:       timeout,
			RatePerMinute: rate,
		}, watchlist, log)
		if err != nil {
			return nil, fmt.Errorf("coinbase provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.Brokers.Bitfinex.Enabled {
		p, err := bitfinex.NewProvider(bitfinex.Config{
			BaseURL:       cfg.Brokers.Bitfinex.BaseURL,
			Timeout:       timeout,
			RatePerMinute: rate,
		}, watchlist, log)
		if err != nil {
			return nil, fmt.Errorf("bitfinex provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.Brokers.Bittrex.Enabled {
		p, err := bittrex.NewProvider(bittrex.Config{
			BaseURL:       cfg.Brokers.Bittrex.BaseURL,
			Timeout:       timeout,
			RatePerMinute: rate,
		}, watchlist, log)
		if err != nil {
			return nil, fmt.Errorf("bittrex provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.Brokers.Huobi.Enabled {
		p, err := huobi.NewProvider(huobi.Config{
			BaseURL:       cfg.Brokers.Huobi.BaseURL,
			Timeout:       timeout,
			RatePerMinute: rate,
		}, watchlist, log)
		if err != nil {
			return nil, fmt.Errorf("huobi provider: %w", err)
		}
		providers = append(providers, p)
	}

	return providers, nil
}

func parseLogLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func parseTraceProvider(name string) apm.Provider {
	switch name {
	case "zipkin":
		return apm.ZipkinProvider
	case "otlp":
		return apm.OTLPProvider
	case "console":
		return apm.ConsoleProvider
	default:
		return apm.EmptyProvider
	}
}
