package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-ratchet-tracker/internal/syncer/config"
	"golang-ratchet-tracker/internal/syncer/repository"
	"golang-ratchet-tracker/internal/syncer/service"
	"golang-ratchet-tracker/pkg/logger"
	"golang-ratchet-tracker/pkg/mailer"
	"golang-ratchet-tracker/pkg/postgres"
	"golang-ratchet-tracker/pkg/redis"
	"golang-ratchet-tracker/pkg/telegram"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs one price synchronization pass and exits",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		syncSvc, _, appLogger, cleanup := buildService()
		defer cleanup()

		report, err := syncSvc.Run(ctx)
		if err != nil {
			appLogger.Fatal("Sync run failed", logger.ErrorField(err))
		}
		appLogger.Info("Run finished", logger.Field("report", report))
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the price synchronization on a cron schedule",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		syncSvc, cfg, appLogger, cleanup := buildService()
		defer cleanup()

		schedule := cfg.Sync.CronSchedule
		if schedule == "" {
			// Weekdays at 17:30 market time, after the close.
			schedule = "30 17 * * 1-5"
		}

		c := cron.New()
		_, err := c.AddFunc(schedule, func() {
			report, err := syncSvc.Run(ctx)
			if err != nil {
				appLogger.Error("Sync run failed", logger.ErrorField(err))
				return
			}
			appLogger.Info("Run finished", logger.Field("report", report))
		})
		if err != nil {
			appLogger.Fatal("Invalid cron schedule", logger.ErrorField(err), logger.StringField("schedule", schedule))
		}

		appLogger.Info("Sync scheduler starting", logger.StringField("schedule", schedule))
		c.Start()

		<-ctx.Done()

		appLogger.Info("Sync scheduler stopping")
		<-c.Stop().Done()
	},
}

// buildService wires the sync job from configuration. Missing provider
// credentials are fatal here, before any fetch happens; every other
// collaborator is optional and its step degrades to a no-op.
func buildService() (service.PriceSyncService, *config.Config, *logger.Logger, func()) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Info("Starting Sync Service", logger.Field("name", cfg.App.Name))

	if cfg.AlphaVantage.APIKey == "" {
		appLogger.Fatal("Missing Alpha Vantage API key, refusing to start")
	}

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
	}

	positionRepo := repository.NewPositionsRepository(db.DB)
	userRepo := repository.NewUsersRepository(db.DB)
	alertRepo := repository.NewAlertsRepository(db.DB)

	primary := repository.NewAlphaVantageRepository(cfg, appLogger)
	var fallback repository.QuoteRepository
	if cfg.YahooFinance.Enabled {
		fallback = repository.NewYahooFinanceRepository(cfg, appLogger)
	}

	var mail mailer.Notifier
	if cfg.Mailer.Enabled {
		if cfg.Mailer.APIKey == "" {
			appLogger.Fatal("Mailer enabled but API key missing, refusing to start")
		}
		mail = mailer.NewClient(mailer.Config{
			BaseURL: cfg.Mailer.BaseURL,
			APIKey:  cfg.Mailer.APIKey,
			From:    cfg.Mailer.From,
		})
	}

	var tg telegram.Notifier
	if cfg.Telegram.Enabled {
		tg, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	syncSvc := service.NewPriceSyncService(cfg, appLogger, positionRepo, userRepo, alertRepo, primary, fallback, redisClient, mail, tg)

	cleanup := func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = appLogger.Sync()
	}

	return syncSvc, cfg, appLogger, cleanup
}

func main() {
	rootCmd := &cobra.Command{Use: "sync-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-syncer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(runCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing sync-service CLI: %s\n", err)
		os.Exit(1)
	}
}
