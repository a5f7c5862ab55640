// Package main одноразовый цикл рассылки уведомлений о наводнениях.
// Запускается планировщиком (cron), код выхода отличен от нуля при сбое цикла.
// Ошибки доставки отдельным получателям цикл не прерывают.
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
	smtplib "github.com/magabrotheeeer/flood-alert/internal/lib/smtp"
	"github.com/magabrotheeeer/flood-alert/internal/observability"
	floodqueryservice "github.com/magabrotheeeer/flood-alert/internal/services/floodquery"
	notifierservice "github.com/magabrotheeeer/flood-alert/internal/services/notifier"
	senderservice "github.com/magabrotheeeer/flood-alert/internal/services/sender"
	"github.com/magabrotheeeer/flood-alert/internal/storage/repository"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting notifier", slog.String("env", cfg.Env))

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

	metrics := observability.NewMetrics()

	floodQueryService, err := floodqueryservice.NewFloodQueryService(db, cacheRedis, clockwork.NewRealClock(), logger)
	if err != nil {
		logger.Error("failed to initialize flood query", slog.Any("err", err))
		os.Exit(1)
	}

	transport := smtplib.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, transport)

	svc := notifierservice.NewNotifierService(floodQueryService, db, senderService, cfg.Alerts, metrics, logger)

	result, err := svc.RunCycle(ctx)
	if err != nil {
		logger.Error("notification cycle failed", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("notifier finished",
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed))
}
