package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-ratchet-tracker/internal/syncer/config"
	"golang-ratchet-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYahooUnderTest(t *testing.T, handler http.HandlerFunc) QuoteRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.YahooFinance.BaseURL = server.URL
	cfg.YahooFinance.MaxRequestPerMinute = 600

	return NewYahooFinanceRepository(cfg, logger.NewNop())
}

func TestYahooFinanceGetQuote(t *testing.T) {
	t.Run("parses_chart_meta", func(t *testing.T) {
		repo := newYahooUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
			w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"AAPL","regularMarketPrice":178.25,"regularMarketTime":1756425600}}]}}`))
		})

		quote, err := repo.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, 178.25, quote.Price)
		assert.Equal(t, int64(1756425600), quote.AsOf.Unix())
	})

	t.Run("chart_error_maps_to_no_data", func(t *testing.T) {
		repo := newYahooUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		})

		_, err := repo.GetQuote(context.Background(), "GONE")
		require.ErrorIs(t, err, ErrNoData)
	})

	t.Run("http_429_maps_to_rate_limited", func(t *testing.T) {
		repo := newYahooUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := repo.GetQuote(context.Background(), "AAPL")
		require.ErrorIs(t, err, ErrRateLimited)
	})
}
