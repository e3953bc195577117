package utils

import (
	"log"
	"time"
)

// TimeNowEastern returns the current time in the US market timezone.
func TimeNowEastern() time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return time.Now().In(loc)
}

// TradingDay formats a time as the YYYY-MM-DD key used for per-day caches.
func TradingDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// IsFriday reports whether the given time falls on a Friday.
func IsFriday(t time.Time) bool {
	return t.Weekday() == time.Friday
}
