package dto

import "time"

// CreatePositionRequest is the payload for registering a tracked position.
type CreatePositionRequest struct {
	Symbol               string  `json:"symbol"`
	CompanyName          string  `json:"company_name"`
	EntryPrice           float64 `json:"entry_price"`
	CurrentPrice         float64 `json:"current_price"`
	TypicalVolatility    float64 `json:"typical_volatility"`
	VolatilityMultiplier float64 `json:"volatility_multiplier"`
}

// SetPriceRequest is the payload for a manual price edit.
type SetPriceRequest struct {
	Price float64 `json:"price"`
}

// PositionResponse is a position with its derived threshold state.
type PositionResponse struct {
	ID                   uint       `json:"id"`
	Symbol               string     `json:"symbol"`
	CompanyName          string     `json:"company_name"`
	EntryPrice           float64    `json:"entry_price"`
	CurrentPrice         float64    `json:"current_price"`
	HighestClose         float64    `json:"highest_close"`
	HighestCloseDate     time.Time  `json:"highest_close_date"`
	TypicalVolatility    float64    `json:"typical_volatility"`
	VolatilityMultiplier float64    `json:"volatility_multiplier"`
	ThresholdPrice       float64    `json:"threshold_price"`
	DistanceToThreshold  float64    `json:"distance_to_threshold_pct"`
	Triggered            bool       `json:"triggered"`
	TriggeredAt          *time.Time `json:"triggered_at,omitempty"`
	DateAdded            time.Time  `json:"date_added"`
}

// SuggestVolatilityRequest carries a recent daily close series.
type SuggestVolatilityRequest struct {
	Closes []float64 `json:"closes"`
}

// SuggestVolatilityResponse carries the suggested typical volatility. Found is
// false when the series contains no qualifying pullback.
type SuggestVolatilityResponse struct {
	TypicalVolatility float64 `json:"typical_volatility"`
	Found             bool    `json:"found"`
}

// GetPositionsParam filters position queries.
type GetPositionsParam struct {
	UserID  *uint
	Symbols []string
}
