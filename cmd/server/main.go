// Package main is the entry point of the stress testing service.
//
// The service exposes the stress engine over HTTP, keeps a history of runs in
// SQLite, optionally archives reports to S3-compatible storage and runs
// scheduled retention and maintenance jobs for the history database.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/sentinel-stress/internal/config"
	"github.com/aristath/sentinel-stress/internal/di"
	"github.com/aristath/sentinel-stress/internal/server"
	"github.com/aristath/sentinel-stress/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting stress service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Stress:    container.StressHandler,
		Metrics:   container.Metrics,
		HistoryDB: container.HistoryDB,
		Scheduler: container.Scheduler,
		Jobs:      container.Jobs,
	})

	container.Scheduler.Start()

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	container.Scheduler.Stop()

	// In-flight requests and pending report uploads get 30 seconds
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
