// Package services содержит бизнес-логику жизненного цикла подписчика:
// регистрация с письмом подтверждения, одноразовое подтверждение адреса
// и отписка по детерминированному токену.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/magabrotheeeer/flood-alert/internal/config"
	"github.com/magabrotheeeer/flood-alert/internal/lib/unsubtoken"
	"github.com/magabrotheeeer/flood-alert/internal/models"
	sendersvc "github.com/magabrotheeeer/flood-alert/internal/services/sender"
)

// SubscriberRepository определяет методы для работы с подписчиками в хранилище.
type SubscriberRepository interface {
	// UpsertPendingSignup атомарно регистрирует адрес или перевыпускает токен подтверждения.
	UpsertPendingSignup(ctx context.Context, sub models.Subscriber) (*models.Subscriber, error)
	// VerifyByToken атомарно подтверждает адрес по одноразовому токену.
	VerifyByToken(ctx context.Context, token string) (*models.Subscriber, error)
	// Unsubscribe снимает подписку, возвращает изменилась ли запись.
	Unsubscribe(ctx context.Context, id string) (bool, error)
	// ListActiveRecipients возвращает подтверждённых и подписанных получателей.
	ListActiveRecipients(ctx context.Context) ([]*models.Subscriber, error)
}

// EmailSender отправляет одно структурированное письмо.
type EmailSender interface {
	Send(msg sendersvc.EmailMessage) error
}

// SubscriberService реализует операции над подписчиками.
// Секрет токенов и публичный адрес сервиса передаются при создании,
// внутри бизнес-логики окружение не читается.
type SubscriberService struct {
	repo   SubscriberRepository
	sender EmailSender
	cfg    config.Alerts
	log    *slog.Logger
}

// NewSubscriberService создает новый экземпляр SubscriberService.
func NewSubscriberService(repo SubscriberRepository, sender EmailSender, cfg config.Alerts, log *slog.Logger) *SubscriberService {
	return &SubscriberService{
		repo:   repo,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// Signup регистрирует адрес и синхронно отправляет письмо со ссылкой
// подтверждения. Для уже активного адреса хранилище возвращает
// repository.ErrEmailAlreadySubscribed, письмо не отправляется.
func (s *SubscriberService) Signup(ctx context.Context, email string) error {
	const op = "services.subscriber.Signup"

	stored, err := s.repo.UpsertPendingSignup(ctx, models.NewSubscriber(email))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("pending signup stored", slog.String("id", stored.ID))

	link := fmt.Sprintf("%s/verify?token=%s", s.cfg.PublicBaseURL, url.QueryEscape(stored.VerificationToken))
	if err := s.sender.Send(sendersvc.VerificationEmail(stored.Email, link)); err != nil {
		return fmt.Errorf("%s: send verification email: %w", op, err)
	}

	s.log.Info("verification email sent", slog.String("id", stored.ID))
	return nil
}

// Verify подтверждает адрес по одноразовому токену и включает подписку.
func (s *SubscriberService) Verify(ctx context.Context, token string) (*models.Subscriber, error) {
	const op = "services.subscriber.Verify"

	sub, err := s.repo.VerifyByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscriber verified", slog.String("id", sub.ID))
	return sub, nil
}

// Unsubscribe снимает подписку по id. Возвращает false без ошибки,
// если подписка уже была снята или id неизвестен.
func (s *SubscriberService) Unsubscribe(ctx context.Context, id string) (bool, error) {
	const op = "services.subscriber.Unsubscribe"

	changed, err := s.repo.Unsubscribe(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if changed {
		s.log.Info("subscriber unsubscribed", slog.String("id", id))
	}
	return changed, nil
}

// CheckUnsubscribeToken проверяет токен отписки для данного id.
// Знание id без секрета не позволяет подделать токен.
func (s *SubscriberService) CheckUnsubscribeToken(id, token string) bool {
	return unsubtoken.Verify(id, token, s.cfg.UnsubscribeSecret)
}

// ListActiveRecipients возвращает получателей рассылки в порядке создания.
func (s *SubscriberService) ListActiveRecipients(ctx context.Context) ([]*models.Subscriber, error) {
	const op = "services.subscriber.ListActiveRecipients"

	recipients, err := s.repo.ListActiveRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return recipients, nil
}
