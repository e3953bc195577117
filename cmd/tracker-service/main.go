package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-ratchet-tracker/internal/tracker/config"
	delivery "golang-ratchet-tracker/internal/tracker/delivery/http"
	"golang-ratchet-tracker/internal/tracker/repository"
	"golang-ratchet-tracker/internal/tracker/service"
	"golang-ratchet-tracker/pkg/logger"
	"golang-ratchet-tracker/pkg/postgres"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the tracker API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Tracker Service", logger.Field("name", cfg.App.Name))

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
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUsersRepository(db.DB)
	positionRepo := repository.NewPositionsRepository(db.DB)
	alertRepo := repository.NewAlertsRepository(db.DB)

	// Initialize services
	tokenTTL, err := time.ParseDuration(cfg.Auth.TokenTTL)
	if err != nil {
		appLogger.Fatal("Invalid token TTL", logger.ErrorField(err))
	}
	userSvc := service.NewUserService(userRepo, appLogger, cfg.Auth.JWTSecret, tokenTTL)
	positionSvc := service.NewPositionService(positionRepo, alertRepo, appLogger)
	alertSvc := service.NewAlertService(alertRepo, appLogger)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")

	authHandler := delivery.NewAuthHandler(userSvc, appLogger)
	authHandler.RegisterRoutes(apiV1.Group("/auth"))

	authed := apiV1.Group("", delivery.JWTAuth(cfg.Auth.JWTSecret, appLogger))

	positionHandler := delivery.NewPositionHandler(positionSvc, appLogger)
	positionHandler.RegisterRoutes(authed.Group("/positions"))
	positionHandler.RegisterVolatilityRoutes(authed.Group("/volatility"))

	alertHandler := delivery.NewAlertHandler(alertSvc, appLogger)
	alertHandler.RegisterRoutes(authed.Group("/alerts"))

	preferenceHandler := delivery.NewPreferenceHandler(userSvc, appLogger)
	preferenceHandler.RegisterRoutes(authed.Group("/preferences"))

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "tracker-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-tracker.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing tracker-service CLI: %s\n", err)
		os.Exit(1)
	}
}
