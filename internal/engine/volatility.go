package engine

import "sort"

// MinPullbackPct is the smallest local-high-to-local-low decline counted as a
// pullback episode.
const MinPullbackPct = 2.0

// SuggestVolatility scans a daily close series for pullback episodes deeper
// than MinPullbackPct and returns the mean of the interquartile-middle subset
// of their magnitudes, as a suggested typical volatility percentage. The
// second return value is false when the series contains no qualifying
// pullback.
//
// The suggestion is advisory only; the result always lies within the minimum
// and maximum pullback observed in the series.
func SuggestVolatility(closes []float64) (float64, bool) {
	episodes := pullbacks(closes)
	if len(episodes) == 0 {
		return 0, false
	}

	sort.Float64s(episodes)

	lo := len(episodes) / 4
	hi := len(episodes) - lo
	subset := episodes[lo:hi]

	var sum float64
	for _, e := range subset {
		sum += e
	}
	return sum / float64(len(subset)), true
}

// pullbacks returns the percentage declines of every local-high to local-low
// episode deeper than MinPullbackPct. An episode ends when the series makes a
// new high.
func pullbacks(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	var episodes []float64
	high := closes[0]
	low := closes[0]

	record := func() {
		if high <= 0 {
			return
		}
		if decline := (high - low) / high * 100; decline > MinPullbackPct {
			episodes = append(episodes, decline)
		}
	}

	for _, c := range closes[1:] {
		if c > high {
			record()
			high = c
			low = c
			continue
		}
		if c < low {
			low = c
		}
	}
	record()

	return episodes
}
