package binance

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbidash/business/pricing/domain"
	"arbidash/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelInfo, "test", nil)
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewProvider(Config{BaseURL: srv.URL}, []string{"BTCUSD", "ETHUSD"}, testLogger())
	require.NoError(t, err)
	return p
}

func TestFetchFiltersWatchlist(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"symbol":"BTCUSDT","lastPrice":"64210.55"},
			{"symbol":"ETHUSDT","lastPrice":"3400.10"},
			{"symbol":"DOGEUSDT","lastPrice":"0.12"},
			{"symbol":"ETHBTC","lastPrice":"0.052"}
		]`)
	})

	records, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "BTCUSD", records[0].Symbol)
	assert.Equal(t, domain.BrokerBinance, records[0].Broker)
	assert.True(t, records[0].Price.Equal(decimal.RequireFromString("64210.55")))

	assert.Equal(t, "ETHUSD", records[1].Symbol)
	assert.True(t, records[1].Price.Equal(decimal.RequireFromString("3400.10")))
}

func TestFetchSkipsInvalidEntries(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"symbol":"BTCUSDT","lastPrice":"not-a-number"},
			{"symbol":"ETHUSDT","lastPrice":""},
			{"symbol":"ETHUSDT","lastPrice":"-1"}
		]`)
	})

	records, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"code":-1000,"msg":"internal error"}`)
	})

	_, err := p.Fetch(context.Background())
	require.Error(t, err)
}

func TestFetchMalformedPayload(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"unexpected":"shape"}`)
	})

	_, err := p.Fetch(context.Background())
	require.Error(t, err)
}
