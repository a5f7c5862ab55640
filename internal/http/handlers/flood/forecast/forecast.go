// Package forecast реализует HTTP-обработчик главной страницы:
// список предстоящих наводнений в пределах окна прогноза.
package forecast

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/flood-alert/internal/http/response"
	"github.com/magabrotheeeer/flood-alert/internal/lib/sl"
	"github.com/magabrotheeeer/flood-alert/internal/models"
)

// Handler управляет HTTP-запросами на список предстоящих наводнений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки предстоящих наводнений.
type Service interface {
	Upcoming(ctx context.Context) ([]models.FloodEvent, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Предстоящие наводнения
// @Description Возвращает предстоящие приливы не ниже порога затопления в пределах окна прогноза.
// @Tags Floods
// @Produce  json
// @Success 200 {object} response.Response "Список предстоящих наводнений"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выборке"
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.flood.forecast"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	events, err := h.service.Upcoming(r.Context())
	if err != nil {
		log.Error("failed to query upcoming floods", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load flood forecast"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"station_id":         models.StationID,
		"flood_threshold_ft": models.FloodThresholdFt,
		"forecast_days":      models.ForecastDays,
		"floods":             events,
	}))
}
