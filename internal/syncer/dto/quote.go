package dto

import "time"

// Quote is a single last/close price for a symbol.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"as_of"`
}

// SyncReport summarises one sync run.
type SyncReport struct {
	Symbols          int `json:"symbols"`
	SymbolsFetched   int `json:"symbols_fetched"`
	SymbolsSkipped   int `json:"symbols_skipped"`
	PositionsUpdated int `json:"positions_updated"`
	StaleWrites      int `json:"stale_writes"`
	AlertsCreated    int `json:"alerts_created"`
	EmailsSent       int `json:"emails_sent"`
	EmailsFailed     int `json:"emails_failed"`
}
