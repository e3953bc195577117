package common

const (
	// RedisKeyQuote caches a fetched close per (symbol, trading day).
	RedisKeyQuote = "quote:%s:%s"

	// RedisKeySyncLastRun records the completion time of the last sync run.
	RedisKeySyncLastRun = "sync:last_run"
)
