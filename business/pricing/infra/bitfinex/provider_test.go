package bitfinex

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
	"arbidash/internal/apperror"
	"arbidash/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelInfo, "test", nil)
}

func newTestProvider(t *testing.T, watchlist []string, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewProvider(Config{BaseURL: srv.URL}, watchlist, testLogger())
	require.NoError(t, err)
	return p
}

func TestFetchReadsPositionalLastPrice(t *testing.T) {
	p := newTestProvider(t, []string{"BTCUSD"}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/ticker/tBTCUSD", r.URL.Path)
		// [BID, BID_SIZE, ASK, ASK_SIZE, DAILY_CHANGE, DAILY_CHANGE_REL, LAST_PRICE, VOLUME, HIGH, LOW]
		io.WriteString(w, `[64189.0,12.5,64191.0,8.2,120.5,0.0019,64190.21,1540.2,64900.0,63500.0]`)
	})

	records, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "BTCUSD", records[0].Symbol)
	assert.Equal(t, domain.BrokerBitfinex, records[0].Broker)
	assert.True(t, records[0].Price.Equal(decimal.RequireFromString("64190.21")),
		"Price = %s, want 64190.21", records[0].Price)
}

func TestFetchShortPayloadSkipped(t *testing.T) {
	p := newTestProvider(t, []string{"BTCUSD", "ETHUSD"}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/ticker/tBTCUSD" {
			io.WriteString(w, `[64189.0,12.5]`)
			return
		}
		io.WriteString(w, `[3399.0,12.5,3401.0,8.2,10.5,0.0019,3400.10,1540.2,3500.0,3300.0]`)
	})

	records, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ETHUSD", records[0].Symbol)
}

func TestFetchTotalOutageReturnsError(t *testing.T) {
	p := newTestProvider(t, []string{"BTCUSD", "ETHUSD"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	records, err := p.Fetch(context.Background())
	require.Error(t, err, "a fully failing broker must not look like an empty success")
	assert.Empty(t, records)
	assert.Equal(t, apperror.CodeBrokerAPIError, apperror.GetCode(err))
}

func TestFetchUnknownSymbolSkipped(t *testing.T) {
	p := newTestProvider(t, []string{"BTCUSD", "ETHUSD"}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/ticker/tETHUSD" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `["error",10020,"symbol: invalid"]`)
			return
		}
		io.WriteString(w, `[64189.0,12.5,64191.0,8.2,120.5,0.0019,64190.21,1540.2,64900.0,63500.0]`)
	})

	records, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BTCUSD", records[0].Symbol)
}
