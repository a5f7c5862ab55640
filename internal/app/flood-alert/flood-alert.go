// Package floodalert собирает HTTP-приложение сервиса уведомлений о наводнениях:
// хранилище, кеш, клиент NOAA, бизнес-сервисы и сервер с маршрутами.
package floodalert

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/flood-alert/internal/cache"
	"github.com/magabrotheeeer/flood-alert/internal/config"
	smtplib "github.com/magabrotheeeer/flood-alert/internal/lib/smtp"
	"github.com/magabrotheeeer/flood-alert/internal/migrations"
	floodqueryservice "github.com/magabrotheeeer/flood-alert/internal/services/floodquery"
	senderservice "github.com/magabrotheeeer/flood-alert/internal/services/sender"
	subscriberservice "github.com/magabrotheeeer/flood-alert/internal/services/subscriber"
	"github.com/magabrotheeeer/flood-alert/internal/storage/repository"
)

// App HTTP-приложение сервиса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New собирает приложение: подключения, миграции, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	transport := smtplib.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, transport)
	subscriberService := subscriberservice.NewSubscriberService(db, senderService, cfg.Alerts, logger)
	floodQueryService, err := floodqueryservice.NewFloodQueryService(db, cacheRedis, clockwork.NewRealClock(), logger)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, subscriberService, floodQueryService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close() //nolint:errcheck
		return err
	}
}
