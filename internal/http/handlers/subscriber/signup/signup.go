// Package signup реализует HTTP-обработчик регистрации адреса на рассылку.
//
// Handler принимает JSON с email, валидирует его, вызывает бизнес-логику
// регистрации и отвечает нейтральным подтверждением. Повторная регистрация
// уже активного адреса возвращает конфликт.
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/flood-alert/internal/http/response"
	"github.com/magabrotheeeer/flood-alert/internal/lib/sl"
	"github.com/magabrotheeeer/flood-alert/internal/models"
	"github.com/magabrotheeeer/flood-alert/internal/storage/repository"
)

// Handler управляет HTTP-запросами на регистрацию подписчика.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Signup(ctx context.Context, email string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подписаться на уведомления о наводнениях
// @Description Регистрирует email и отправляет письмо со ссылкой подтверждения.
// @Tags Subscribers
// @Accept  json
// @Produce  json
// @Param request body models.SignupRequest true "Email подписчика"
// @Success 200 {object} response.Response "Письмо подтверждения отправлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или email"
// @Failure 409 {object} response.ErrorResponse "Адрес уже подписан"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при регистрации"
// @Router /signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.signup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Signup(r.Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrEmailAlreadySubscribed) {
			log.Info("email already subscribed")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email is already subscribed"))
			return
		}
		log.Error("failed to sign up subscriber", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign up"))
		return
	}

	log.Info("verification email sent")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Verification email sent!",
	}))
}
