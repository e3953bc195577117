package config

import (
	"time"

	"golang-ratchet-tracker/pkg/config"
)

// Sync holds the batch-run tuning knobs.
type Sync struct {
	// RateLimitCooldown is how long to pause after an explicit rate-limit
	// signal before retrying the same symbol.
	RateLimitCooldown time.Duration `mapstructure:"rate_limit_cooldown"`
	// RateLimitMaxRetries bounds the rate-limit retry loop per symbol.
	RateLimitMaxRetries int `mapstructure:"rate_limit_max_retries"`
	// QuoteCacheTTL is how long a fetched close stays valid in Redis.
	QuoteCacheTTL time.Duration `mapstructure:"quote_cache_ttl"`
	// CronSchedule drives the serve command, nominally weekdays after close.
	CronSchedule string `mapstructure:"cron_schedule"`
}

// AlphaVantage holds the configuration for the primary quote provider.
type AlphaVantage struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// YahooFinance holds the configuration for the fallback quote provider.
type YahooFinance struct {
	Enabled             bool   `mapstructure:"enabled"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Mailer holds the configuration for the outbound email API.
type Mailer struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	From    string `mapstructure:"from"`
}

// Telegram holds configuration for the optional Telegram channel.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the sync service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	Sync         Sync            `mapstructure:"sync"`
	AlphaVantage AlphaVantage    `mapstructure:"alpha_vantage"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Mailer       Mailer          `mapstructure:"mailer"`
	Telegram     Telegram        `mapstructure:"telegram"`
}

// Load loads the sync service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Sync.RateLimitCooldown <= 0 {
		cfg.Sync.RateLimitCooldown = time.Minute
	}
	if cfg.Sync.RateLimitMaxRetries <= 0 {
		cfg.Sync.RateLimitMaxRetries = 3
	}
	if cfg.Sync.QuoteCacheTTL <= 0 {
		cfg.Sync.QuoteCacheTTL = 20 * time.Hour
	}
	return &cfg, nil
}
