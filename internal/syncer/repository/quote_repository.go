package repository

import (
	"context"
	"errors"

	"golang-ratchet-tracker/internal/syncer/dto"
)

var (
	// ErrNoData means the provider answered but had no price for the symbol.
	ErrNoData = errors.New("quote: no data for symbol")
	// ErrRateLimited means the provider explicitly signalled throughput
	// exceeded. The caller cools down and retries instead of skipping.
	ErrRateLimited = errors.New("quote: rate limited")
)

// QuoteRepository fetches the latest close for one symbol.
type QuoteRepository interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}
