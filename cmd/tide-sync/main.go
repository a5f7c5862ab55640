// Package main одноразовая задача обновления архива приливов из NOAA.
// Запускается планировщиком (cron), код выхода отличен от нуля при сбое.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/flood-alert/internal/cache"
	"github.com/magabrotheeeer/flood-alert/internal/config"
	"github.com/magabrotheeeer/flood-alert/internal/noaa"
	"github.com/magabrotheeeer/flood-alert/internal/observability"
	tidesyncservice "github.com/magabrotheeeer/flood-alert/internal/services/tidesync"
	"github.com/magabrotheeeer/flood-alert/internal/storage/repository"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting tide-sync", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.DB.Close() //nolint:errcheck

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("err", err))
		os.Exit(1)
	}

	client := noaa.NewClient(cfg.NOAA, logger)
	metrics := observability.NewMetrics()

	svc, err := tidesyncservice.NewTideSyncService(client, db, cacheRedis, clockwork.NewRealClock(), metrics, logger)
	if err != nil {
		logger.Error("failed to initialize tide-sync", slog.Any("err", err))
		os.Exit(1)
	}

	count, err := svc.Refresh(ctx)
	if err != nil {
		logger.Error("tide refresh failed", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("tide-sync finished", slog.Int("rows", count))
}
