// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Brokers   BrokersConfig   `mapstructure:"brokers"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	HealthPort  int    `mapstructure:"health_port"`
}

// BrokersConfig holds per-broker API settings.
type BrokersConfig struct {
	Binance        BrokerEndpoint `mapstructure:"binance"`
	Coinbase       BrokerEndpoint `mapstructure:"coinbase"`
	Bitfinex       BrokerEndpoint `mapstructure:"bitfinex"`
	Bittrex        BrokerEndpoint `mapstructure:"bittrex"`
	Huobi          BrokerEndpoint `mapstructure:"huobi"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
	RatePerMinute  int            `mapstructure:"rate_per_minute"`
}

// BrokerEndpoint holds a single broker's API location.
type BrokerEndpoint struct {
	BaseURL string `mapstructure:"base_url"`
	Enabled bool   `mapstructure:"enabled"`
}

// ArbitrageConfig holds detection and simulation settings.
type ArbitrageConfig struct {
	FeePercent       float64       `mapstructure:"fee_percent"`
	CapitalInvested  float64       `mapstructure:"capital_invested"`
	CooldownSeconds  float64       `mapstructure:"cooldown_seconds"`
	MinSpreadPercent float64       `mapstructure:"min_spread_percent"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	MaxHistory       int           `mapstructure:"max_history"`
	Watchlist        []string      `mapstructure:"watchlist"`
	TUIMode          bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// FeePercentDecimal returns the fee percent as decimal.Decimal.
func (c *ArbitrageConfig) FeePercentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.FeePercent)
}

// CapitalInvestedDecimal returns the invested capital as decimal.Decimal.
func (c *ArbitrageConfig) CapitalInvestedDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.CapitalInvested)
}

// MinSpreadPercentDecimal returns the minimum spread as decimal.Decimal.
func (c *ArbitrageConfig) MinSpreadPercentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinSpreadPercent)
}

// Cooldown returns the cooldown as a time.Duration.
func (c *ArbitrageConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds * float64(time.Second))
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	TraceProvider  string `mapstructure:"trace_provider"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Config file is optional, env and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("brokers.binance.base_url", "ARB_BINANCE_URL")
	v.BindEnv("brokers.coinbase.base_url", "ARB_COINBASE_URL")
	v.BindEnv("brokers.bitfinex.base_url", "ARB_BITFINEX_URL")
	v.BindEnv("brokers.bittrex.base_url", "ARB_BITTREX_URL")
	v.BindEnv("brokers.huobi.base_url", "ARB_HUOBI_URL")

	v.BindEnv("arbitrage.fee_percent", "ARB_FEE_PERCENT")
	v.BindEnv("arbitrage.cooldown_seconds", "ARB_COOLDOWN_SECONDS")
	v.BindEnv("arbitrage.min_spread_percent", "ARB_MIN_SPREAD_PERCENT")
	v.BindEnv("arbitrage.poll_interval", "ARB_POLL_INTERVAL")

	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arbidash")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_port", 8081)

	v.SetDefault("brokers.binance.base_url", "https://api.binance.com")
	v.SetDefault("brokers.binance.enabled", true)
	v.SetDefault("brokers.coinbase.base_url", "https://api.coinbase.com")
	v.SetDefault("brokers.coinbase.enabled", true)
	v.SetDefault("brokers.bitfinex.base_url", "https://api-pub.bitfinex.com")
	v.SetDefault("brokers.bitfinex.enabled", true)
	v.SetDefault("brokers.bittrex.base_url", "https://api.bittrex.com")
	v.SetDefault("brokers.bittrex.enabled", true)
	v.SetDefault("brokers.huobi.base_url", "https://api.huobi.pro")
	v.SetDefault("brokers.huobi.enabled", true)
	v.SetDefault("brokers.request_timeout", "10s")
	v.SetDefault("brokers.rate_per_minute", 600)

	v.SetDefault("arbitrage.fee_percent", 0.15)
	v.SetDefault("arbitrage.capital_invested", 100)
	v.SetDefault("arbitrage.cooldown_seconds", 30)
	v.SetDefault("arbitrage.min_spread_percent", 0.4)
	v.SetDefault("arbitrage.poll_interval", "1s")
	v.SetDefault("arbitrage.max_history", 0) // 0 = unbounded
	v.SetDefault("arbitrage.watchlist", []string{"BTC", "ETH", "LTC", "XRP", "BCH"})

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbidash")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Arbitrage.FeePercent < 0 {
		return fmt.Errorf("arbitrage.fee_percent must not be negative")
	}
	if c.Arbitrage.CooldownSeconds < 0 {
		return fmt.Errorf("arbitrage.cooldown_seconds must not be negative")
	}
	if c.Arbitrage.PollInterval <= 0 {
		return fmt.Errorf("arbitrage.poll_interval must be positive")
	}
	if len(c.Arbitrage.Watchlist) == 0 {
		return fmt.Errorf("arbitrage.watchlist cannot be empty")
	}
	for name, ep := range map[string]BrokerEndpoint{
		"binance":  c.Brokers.Binance,
		"coinbase": c.Brokers.Coinbase,
		"bitfinex": c.Brokers.Bitfinex,
		"bittrex":  c.Brokers.Bittrex,
		"huobi":    c.Brokers.Huobi,
	} {
		if ep.Enabled && ep.BaseURL == "" {
			return fmt.Errorf("brokers.%s.base_url is required when enabled", name)
		}
	}
	return nil
}
