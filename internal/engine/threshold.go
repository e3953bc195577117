// Package engine holds the pure position math: the ratcheting exit threshold,
// the breach state machine, and the pullback-based volatility estimator.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-ratchet-tracker/internal/entity"
)

var (
	// ErrInvalidPrice is returned for a zero or negative price update.
	ErrInvalidPrice = errors.New("price must be positive")
)

// MaxDeclinePct is the validation ceiling for typicalVolatility * multiplier.
// A decline of 100% or more would produce a non-positive threshold, so it is
// rejected at input time.
const MaxDeclinePct = 100.0

// ComputeThreshold derives the exit price from the high-water mark: the
// threshold sits typicalVolatility*multiplier percent below the highest
// observed close.
func ComputeThreshold(highestClose, typicalVolatility, multiplier float64) float64 {
	declinePct := typicalVolatility * multiplier
	return highestClose * (1 - declinePct/100)
}

// ValidDecline reports whether the configured buffer leaves a positive
// threshold.
func ValidDecline(typicalVolatility, multiplier float64) bool {
	return typicalVolatility*multiplier < MaxDeclinePct
}

// CanAdmit is the one-time admission gate: positions are only tracked once the
// price has doubled from entry. It is never re-checked after creation.
func CanAdmit(entryPrice, currentPrice float64) bool {
	return currentPrice >= 2*entryPrice
}

// PriceUpdate describes the outcome of applying one observed close to a
// position.
type PriceUpdate struct {
	NewHigh   bool
	Changed   bool
	Threshold float64
	Alert     *entity.Alert
}

// ApplyPrice applies a new observed close to the position. The highest close
// only ratchets upward, the threshold is recomputed after the ratchet, and the
// triggered flag flips false to true at most once: an already-triggered
// position never emits a second alert however far the price falls.
//
// Applying the same price twice is a no-op the second time, so re-running a
// sync over the same day's closes is safe.
func ApplyPrice(p *entity.Position, newPrice float64, now time.Time) (PriceUpdate, error) {
	if newPrice <= 0 {
		return PriceUpdate{}, fmt.Errorf("%w: %f", ErrInvalidPrice, newPrice)
	}

	var upd PriceUpdate

	if newPrice > p.HighestClose {
		p.HighestClose = newPrice
		p.HighestCloseDate = now
		upd.NewHigh = true
	}

	upd.Threshold = ComputeThreshold(p.HighestClose, p.TypicalVolatility, p.VolatilityMultiplier)

	if !p.Triggered && newPrice <= upd.Threshold {
		p.Triggered = true
		triggeredAt := now
		p.TriggeredAt = &triggeredAt
		upd.Alert = newTriggerAlert(p, newPrice, upd.Threshold, now)
	}

	upd.Changed = upd.NewHigh || upd.Alert != nil || p.CurrentPrice != newPrice
	p.CurrentPrice = newPrice

	return upd, nil
}

func newTriggerAlert(p *entity.Position, price, threshold float64, now time.Time) *entity.Alert {
	data, _ := json.Marshal(map[string]float64{
		"price":     price,
		"threshold": threshold,
	})
	return &entity.Alert{
		UserID:     p.UserID,
		PositionID: p.ID,
		Symbol:     p.Symbol,
		Message:    fmt.Sprintf("%s triggered at %.2f (threshold %.2f)", p.Symbol, price, threshold),
		Data:       data,
		CreatedAt:  now,
	}
}
