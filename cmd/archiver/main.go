package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/uwearuk/storefront/internal/archive"
	"github.com/uwearuk/storefront/internal/config"
	"github.com/uwearuk/storefront/internal/database"
	orderspostgres "github.com/uwearuk/storefront/internal/orders/adapters/postgres"
	"github.com/uwearuk/storefront/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	retention := time.Duration(cfg.Archiver.RetentionDays) * 24 * time.Hour
	archiver := archive.NewArchiver(
		orderspostgres.NewRepository(pool),
		orderspostgres.NewArchiveRepository(pool),
		retention,
		logger,
	)
	lock := archive.NewRunLock(pool)

	logger.Info("archiver starting",
		"retention_days", cfg.Archiver.RetentionDays, "interval", cfg.Archiver.Interval)

	runOnce(ctx, lock, archiver, logger)

	ticker := time.NewTicker(cfg.Archiver.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("archiver stopped")
			return
		case <-ticker.C:
			runOnce(ctx, lock, archiver, logger)
		}
	}
}

func runOnce(ctx context.Context, lock *archive.RunLock, archiver *archive.Archiver, logger *slog.Logger) {
	release, acquired, err := lock.TryAcquire(ctx)
	if err != nil {
		logger.Error("failed to acquire run lock", "error", err)
		return
	}
	if !acquired {
		logger.Info("run lock held by another instance, skipping")
		return
	}
	defer release()

	if _, err := archiver.Run(ctx); err != nil {
		logger.Error("archival run failed", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
