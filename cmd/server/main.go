package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/moves/internal/config"
	"github.com/mmynk/moves/internal/server"
	"github.com/mmynk/moves/internal/storage/sqlite"
	"github.com/mmynk/moves/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet; fall back to the env-driven setup.
		logging.Setup().Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.SetupWith(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, store, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server failed", "error", err)
		stop()
		store.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
