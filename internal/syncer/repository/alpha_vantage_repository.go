package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang-ratchet-tracker/internal/syncer/config"
	"golang-ratchet-tracker/internal/syncer/dto"
	"golang-ratchet-tracker/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type alphaVantageRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	memo           *cache.Cache
}

// NewAlphaVantageRepository creates the primary quote provider client. The
// limiter paces requests to the provider's per-minute quota; an explicit
// rate-limit note in the response body maps to ErrRateLimited.
func NewAlphaVantageRepository(cfg *config.Config, log *logger.Logger) QuoteRepository {
	perMinute := cfg.AlphaVantage.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 5
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)
	return &alphaVantageRepository{
		cfg:            cfg,
		log:            log,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		memo:           cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (r *alphaVantageRepository) Name() string {
	return "alpha_vantage"
}

// alphaVantageGlobalQuote mirrors the GLOBAL_QUOTE response shape.
type alphaVantageGlobalQuote struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

func (r *alphaVantageRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	if cached, found := r.memo.Get(symbol); found {
		quote := cached.(dto.Quote)
		return &quote, nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		r.cfg.AlphaVantage.BaseURL, url.QueryEscape(symbol), r.cfg.AlphaVantage.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to call Alpha Vantage", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed alphaVantageGlobalQuote
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode alpha vantage response: %w", err)
	}

	// The free tier reports quota exhaustion inside a 200 response, in either
	// field depending on the limit hit.
	if parsed.Note != "" || parsed.Information != "" {
		return nil, ErrRateLimited
	}
	if parsed.GlobalQuote.Price == "" {
		return nil, ErrNoData
	}

	price, err := strconv.ParseFloat(parsed.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", parsed.GlobalQuote.Price, err)
	}
	if price <= 0 {
		return nil, ErrNoData
	}

	quote := dto.Quote{Symbol: symbol, Price: price, AsOf: time.Now()}
	r.memo.Set(symbol, quote, cache.DefaultExpiration)

	return &quote, nil
}
