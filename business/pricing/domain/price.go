package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteCurrency is the currency every canonical symbol is quoted in.
const QuoteCurrency = "USD"

// DefaultWatchlist holds the base assets tracked out of the box.
var DefaultWatchlist = []string{"BTC", "ETH", "LTC", "XRP", "BCH"}

// PriceRecord is a single normalized price observation from a broker.
type PriceRecord struct {
	Symbol    string          // canonical, e.g. "BTCUSD"
	Price     decimal.Decimal // price in USD
	Broker    Broker
	Timestamp time.Time
}

// Valid reports whether the record carries a usable price.
func (p PriceRecord) Valid() bool {
	return p.Symbol != "" && p.Price.IsPositive()
}

// CanonicalSymbol normalizes a broker-native pair name to the canonical
// BASEUSD form. It strips Bitfinex's leading "t" prefix, Coinbase's dash
// separator, uppercases Huobi's lowercase pairs and maps USDT quotes to
// USD. Returns "" when the pair is not quoted in a supported currency.
func CanonicalSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	// Bitfinex trading pairs carry a "t" prefix, e.g. tBTCUSD.
	if len(raw) > 1 && raw[0] == 't' && raw[1] >= 'A' && raw[1] <= 'Z' {
		s = strings.ToUpper(raw[1:])
	}

	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "/", "")

	switch {
	case strings.HasSuffix(s, "USDT"):
		return strings.TrimSuffix(s, "USDT") + QuoteCurrency
	case strings.HasSuffix(s, QuoteCurrency):
		return s
	default:
		return ""
	}
}

// WatchlistSymbols expands base assets to their canonical USD symbols.
func WatchlistSymbols(assets []string) []string {
	symbols := make([]string, 0, len(assets))
	for _, a := range assets {
		symbols = append(symbols, strings.ToUpper(strings.TrimSpace(a))+QuoteCurrency)
	}
	return symbols
}

// InWatchlist reports whether a canonical symbol belongs to the watchlist.
func InWatchlist(symbol string, watchlist []string) bool {
	for _, w := range watchlist {
		if symbol == w {
			return true
		}
	}
	return false
}

// BaseAsset returns the base asset of a canonical symbol, e.g. "BTC"
// for "BTCUSD".
func BaseAsset(symbol string) string {
	return strings.TrimSuffix(symbol, QuoteCurrency)
}
