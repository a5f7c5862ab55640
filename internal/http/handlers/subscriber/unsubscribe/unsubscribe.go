// Package unsubscribe реализует HTTP-обработчик отписки по подписанной ссылке.
//
// GET показывает подтверждение, POST снимает подписку. Оба метода требуют
// валидную пару id+token: токен детерминированно выводится из id и секрета,
// поэтому проверка не обращается к хранилищу.
package unsubscribe

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/flood-alert/internal/http/response"
	"github.com/magabrotheeeer/flood-alert/internal/lib/sl"
)

// Handler управляет HTTP-запросами на отписку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отписки.
type Service interface {
	CheckUnsubscribeToken(id, token string) bool
	Unsubscribe(ctx context.Context, id string) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отписаться от уведомлений
// @Description GET возвращает подтверждение отписки, POST снимает подписку. Ссылка подписана токеном из письма.
// @Tags Subscribers
// @Produce  json
// @Param id query string true "Идентификатор подписчика"
// @Param token query string true "Токен отписки"
// @Success 200 {object} response.Response "Подтверждение или результат отписки"
// @Failure 400 {object} response.ErrorResponse "Невалидная ссылка отписки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отписке"
// @Router /unsubscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.unsubscribe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := r.URL.Query().Get("id")
	token := r.URL.Query().Get("token")
	if id == "" || token == "" || !h.service.CheckUnsubscribeToken(id, token) {
		log.Info("invalid unsubscribe link")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid unsubscribe link"))
		return
	}

	if r.Method == http.MethodGet {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"message": "Send a POST request to this URL to confirm unsubscribing.",
		}))
		return
	}

	changed, err := h.service.Unsubscribe(r.Context(), id)
	if err != nil {
		log.Error("failed to unsubscribe", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not unsubscribe"))
		return
	}

	message := "You have been unsubscribed."
	if !changed {
		message = "You were already unsubscribed."
	}
	log.Info("unsubscribe processed", slog.String("id", id), slog.Bool("changed", changed))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": message,
	}))
}
