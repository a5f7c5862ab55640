// Package floodalert предоставляет маршруты для основного приложения.
package floodalert

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/flood-alert/internal/http/handlers/flood/forecast"
	"github.com/magabrotheeeer/flood-alert/internal/http/handlers/health"
	"github.com/magabrotheeeer/flood-alert/internal/http/handlers/subscriber/signup"
	"github.com/magabrotheeeer/flood-alert/internal/http/handlers/subscriber/unsubscribe"
	"github.com/magabrotheeeer/flood-alert/internal/http/handlers/subscriber/verify"
	"github.com/magabrotheeeer/flood-alert/internal/http/middlewarectx"
	floodqueryservice "github.com/magabrotheeeer/flood-alert/internal/services/floodquery"
	subscriberservice "github.com/magabrotheeeer/flood-alert/internal/services/subscriber"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, subscriberService *subscriberservice.SubscriberService, floodQueryService *floodqueryservice.FloodQueryService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытые конечные точки
	r.Get("/", forecast.New(logger, floodQueryService).ServeHTTP)
	r.Get("/verify", verify.New(logger, subscriberService).ServeHTTP)
	r.Get("/unsubscribe", unsubscribe.New(logger, subscriberService).ServeHTTP)
	r.Post("/unsubscribe", unsubscribe.New(logger, subscriberService).ServeHTTP)
	r.Get("/health", health.New(logger).ServeHTTP)

	// Регистрация дергает SMTP, поэтому под лимитом
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/signup", signup.New(logger, subscriberService).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
