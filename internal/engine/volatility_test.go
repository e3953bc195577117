package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestVolatilityNoPullbacks(t *testing.T) {
	_, ok := SuggestVolatility(nil)
	assert.False(t, ok)

	_, ok = SuggestVolatility([]float64{100})
	assert.False(t, ok)

	// Strictly rising series has no pullback.
	_, ok = SuggestVolatility([]float64{100, 101, 102, 103})
	assert.False(t, ok)

	// Shallow dips below the 2% floor do not count.
	_, ok = SuggestVolatility([]float64{100, 99.5, 101, 100.2, 102})
	assert.False(t, ok)
}

func TestSuggestVolatilitySingleEpisode(t *testing.T) {
	// 100 -> 90 is a 10% pullback, then recovery to a new high.
	got, ok := SuggestVolatility([]float64{100, 95, 90, 96, 101})
	require.True(t, ok)
	assert.InDelta(t, 10.0, got, 1e-9)
}

func TestSuggestVolatilityTrailingEpisodeCounted(t *testing.T) {
	// The series ends mid-decline; the open episode still counts.
	got, ok := SuggestVolatility([]float64{100, 110, 99})
	require.True(t, ok)
	assert.InDelta(t, 10.0, got, 1e-9)
}

func TestSuggestVolatilityWithinObservedBounds(t *testing.T) {
	series := []float64{
		100, 95, 102, 97, 104, 92, 106, 103, 108, 96,
		110, 107, 112, 100, 114, 111, 116, 104, 118, 115,
	}
	eps := pullbacks(series)
	require.NotEmpty(t, eps)

	min, max := eps[0], eps[0]
	for _, e := range eps {
		if e < min {
			min = e
		}
		if e > max {
			max = e
		}
	}

	got, ok := SuggestVolatility(series)
	require.True(t, ok)
	assert.GreaterOrEqual(t, got, min)
	assert.LessOrEqual(t, got, max)
}

func TestSuggestVolatilityUsesMiddleSubset(t *testing.T) {
	// Four episodes of 4%, 6%, 8%, 20%: the interquartile middle drops the
	// lowest and highest, leaving mean(6, 8) = 7.
	series := []float64{
		100, 96, 101, // 4% pullback, then new high
		101, 94.94, 102, // 6% pullback
		102, 93.84, 103, // 8% pullback
		103, 82.4, 104, // 20% pullback
	}
	eps := pullbacks(series)
	require.Len(t, eps, 4)

	got, ok := SuggestVolatility(series)
	require.True(t, ok)
	assert.InDelta(t, 7.0, got, 0.01)
}
