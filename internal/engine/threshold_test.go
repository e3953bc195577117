package engine

import (
	"testing"
	"time"

	"golang-ratchet-tracker/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPosition() *entity.Position {
	return &entity.Position{
		ID:                   1,
		UserID:               1,
		Symbol:               "AAPL",
		EntryPrice:           50,
		CurrentPrice:         100,
		HighestClose:         100,
		TypicalVolatility:    5,
		VolatilityMultiplier: 2,
	}
}

func TestComputeThreshold(t *testing.T) {
	assert.InDelta(t, 126.00, ComputeThreshold(150, 8, 2.0), 1e-9)
	assert.InDelta(t, 90.0, ComputeThreshold(100, 5, 2.0), 1e-9)
	assert.InDelta(t, 100.0, ComputeThreshold(100, 0, 3.0), 1e-9)
}

func TestComputeThresholdMonotonicity(t *testing.T) {
	// Non-decreasing in highestClose.
	prev := 0.0
	for _, hc := range []float64{1, 10, 50, 100, 150, 1000} {
		th := ComputeThreshold(hc, 8, 2.0)
		assert.GreaterOrEqual(t, th, prev)
		prev = th
	}

	// Non-increasing in typicalVolatility * multiplier.
	prev = ComputeThreshold(100, 0, 1)
	for _, vol := range []float64{1, 2, 5, 10, 25, 49} {
		th := ComputeThreshold(100, vol, 2.0)
		assert.LessOrEqual(t, th, prev)
		prev = th
	}
}

func TestCanAdmit(t *testing.T) {
	assert.False(t, CanAdmit(50, 99))
	assert.True(t, CanAdmit(50, 100))
	assert.True(t, CanAdmit(50, 250))
}

func TestValidDecline(t *testing.T) {
	assert.True(t, ValidDecline(8, 2.0))
	assert.False(t, ValidDecline(50, 2.0))
	assert.False(t, ValidDecline(200, 1.0))
}

func TestApplyPriceRejectsNonPositive(t *testing.T) {
	p := newPosition()
	before := *p

	_, err := ApplyPrice(p, 0, time.Now())
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ApplyPrice(p, -3, time.Now())
	require.ErrorIs(t, err, ErrInvalidPrice)

	// No mutation on rejected input.
	assert.Equal(t, before, *p)
}

func TestApplyPriceRatchetsHighestClose(t *testing.T) {
	p := newPosition()
	now := time.Now()

	upd, err := ApplyPrice(p, 120, now)
	require.NoError(t, err)
	assert.True(t, upd.NewHigh)
	assert.Equal(t, 120.0, p.HighestClose)
	assert.Equal(t, now, p.HighestCloseDate)

	// A lower close never moves the high-water mark.
	upd, err = ApplyPrice(p, 115, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, upd.NewHigh)
	assert.Equal(t, 120.0, p.HighestClose)
	assert.Equal(t, 115.0, p.CurrentPrice)
}

func TestApplyPriceTriggerIsOneShot(t *testing.T) {
	p := newPosition()
	// highestClose=100, vol=5, mult=2 => threshold 90.
	now := time.Now()

	upd, err := ApplyPrice(p, 85, now)
	require.NoError(t, err)
	require.NotNil(t, upd.Alert)
	assert.True(t, p.Triggered)
	assert.Equal(t, 100.0, p.HighestClose)
	assert.Equal(t, "AAPL triggered at 85.00 (threshold 90.00)", upd.Alert.Message)

	// Falling further never emits a second alert.
	upd, err = ApplyPrice(p, 80, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, upd.Alert)
	assert.True(t, p.Triggered)
	assert.Equal(t, 100.0, p.HighestClose)

	// Triggered never reverts, even on a recovery above the threshold.
	upd, err = ApplyPrice(p, 99, now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, upd.Alert)
	assert.True(t, p.Triggered)
}

func TestApplyPriceIdempotentForRepeatedInput(t *testing.T) {
	p := newPosition()
	now := time.Now()

	upd, err := ApplyPrice(p, 85, now)
	require.NoError(t, err)
	assert.True(t, upd.Changed)
	require.NotNil(t, upd.Alert)

	// Identical re-apply: no alert, no high change, nothing to persist.
	upd, err = ApplyPrice(p, 85, now)
	require.NoError(t, err)
	assert.Nil(t, upd.Alert)
	assert.False(t, upd.NewHigh)
	assert.False(t, upd.Changed)
}

func TestApplyPriceHighestCloseMonotonicAcrossSequences(t *testing.T) {
	p := newPosition()
	now := time.Now()

	prices := []float64{110, 95, 130, 80, 125, 131, 50}
	prevHigh := p.HighestClose
	for _, price := range prices {
		_, err := ApplyPrice(p, price, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.HighestClose, prevHigh)
		prevHigh = p.HighestClose
	}
	assert.Equal(t, 131.0, p.HighestClose)
}

func TestApplyPriceTriggerAfterRatchet(t *testing.T) {
	// The threshold is recomputed from the post-ratchet high, so a breach is
	// judged against the new high, not the stored one.
	p := newPosition()
	p.TypicalVolatility = 8
	p.VolatilityMultiplier = 2
	now := time.Now()

	upd, err := ApplyPrice(p, 150, now)
	require.NoError(t, err)
	assert.InDelta(t, 126.00, upd.Threshold, 1e-9)
	assert.Nil(t, upd.Alert)

	upd, err = ApplyPrice(p, 126, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, upd.Alert)
	assert.Equal(t, uint(1), upd.Alert.UserID)
	assert.Equal(t, "AAPL", upd.Alert.Symbol)
}
