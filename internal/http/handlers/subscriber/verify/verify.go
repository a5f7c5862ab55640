// Package verify реализует HTTP-обработчик подтверждения адреса по токену.
//
// Токен одноразовый: повторный переход по той же ссылке отвечает той же
// нейтральной ошибкой, что и неизвестный токен.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/flood-alert/internal/http/response"
	"github.com/magabrotheeeer/flood-alert/internal/lib/sl"
	"github.com/magabrotheeeer/flood-alert/internal/models"
	"github.com/magabrotheeeer/flood-alert/internal/storage/repository"
)

// Handler управляет HTTP-запросами на подтверждение адреса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подтверждения.
type Service interface {
	Verify(ctx context.Context, token string) (*models.Subscriber, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить email подписчика
// @Description Подтверждает адрес по одноразовому токену из письма и включает подписку.
// @Tags Subscribers
// @Produce  json
// @Param token query string true "Одноразовый токен подтверждения"
// @Success 200 {object} response.Response "Адрес подтвержден"
// @Failure 400 {object} response.ErrorResponse "Токен неизвестен или уже использован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при подтверждении"
// @Router /verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Info("missing verification token")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid or already used verification token"))
		return
	}

	sub, err := h.service.Verify(r.Context(), token)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationTokenNotFound) {
			log.Info("verification token not found or already used")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or already used verification token"))
			return
		}
		log.Error("failed to verify subscriber", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not verify email"))
		return
	}

	log.Info("subscriber verified", slog.String("id", sub.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Email verified! You will now receive flood alerts.",
		"email":   sub.Email,
	}))
}
