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

func newAlphaVantageUnderTest(t *testing.T, handler http.HandlerFunc) QuoteRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.AlphaVantage.BaseURL = server.URL
	cfg.AlphaVantage.APIKey = "test-key"
	cfg.AlphaVantage.MaxRequestPerMinute = 600

	return NewAlphaVantageRepository(cfg, logger.NewNop())
}

func TestAlphaVantageGetQuote(t *testing.T) {
	t.Run("parses_global_quote", func(t *testing.T) {
		var requests int
		repo := newAlphaVantageUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
			requests++
			assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
			assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
			w.Write([]byte(`{"Global Quote": {"01. symbol": "AAPL", "05. price": "178.2500"}}`))
		})

		quote, err := repo.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", quote.Symbol)
		assert.Equal(t, 178.25, quote.Price)

		// The second call is served from the short-lived memo, not the wire.
		_, err = repo.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, 1, requests)
	})

	t.Run("quota_note_maps_to_rate_limited", func(t *testing.T) {
		repo := newAlphaVantageUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
		})

		_, err := repo.GetQuote(context.Background(), "AAPL")
		require.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("quota_information_maps_to_rate_limited", func(t *testing.T) {
		repo := newAlphaVantageUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Information": "We have detected your API key and our standard API rate limit is 25 requests per day."}`))
		})

		_, err := repo.GetQuote(context.Background(), "AAPL")
		require.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("http_429_maps_to_rate_limited", func(t *testing.T) {
		repo := newAlphaVantageUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := repo.GetQuote(context.Background(), "AAPL")
		require.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("empty_quote_maps_to_no_data", func(t *testing.T) {
		repo := newAlphaVantageUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Global Quote": {}}`))
		})

		_, err := repo.GetQuote(context.Background(), "UNKNOWN")
		require.ErrorIs(t, err, ErrNoData)
	})
}
