// Package services реализует цикл рассылки уведомлений о наводнениях.
// Один запуск: выборка предстоящих наводнений, список активных получателей,
// письмо каждому с персональной ссылкой отписки.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/flood-alert/internal/config"
	"github.com/magabrotheeeer/flood-alert/internal/lib/sl"
	"github.com/magabrotheeeer/flood-alert/internal/lib/unsubtoken"
	"github.com/magabrotheeeer/flood-alert/internal/models"
	"github.com/magabrotheeeer/flood-alert/internal/observability"
	sendersvc "github.com/magabrotheeeer/flood-alert/internal/services/sender"
)

// FloodSource определяет выборку предстоящих наводнений.
type FloodSource interface {
	Upcoming(ctx context.Context) ([]models.FloodEvent, error)
}

// RecipientSource определяет список активных получателей рассылки.
type RecipientSource interface {
	ListActiveRecipients(ctx context.Context) ([]*models.Subscriber, error)
}

// EmailSender отправляет одно структурированное письмо.
type EmailSender interface {
	Send(msg sendersvc.EmailMessage) error
}

// CycleResult итог одного цикла рассылки.
type CycleResult struct {
	Sent             int
	Failed           int
	FailedRecipients []string
}

// NotifierService выполняет циклы рассылки.
type NotifierService struct {
	floods     FloodSource
	recipients RecipientSource
	sender     EmailSender
	cfg        config.Alerts
	metrics    *observability.Metrics
	log        *slog.Logger
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(floods FloodSource, recipients RecipientSource, sender EmailSender,
	cfg config.Alerts, metrics *observability.Metrics, log *slog.Logger) *NotifierService {
	return &NotifierService{
		floods:     floods,
		recipients: recipients,
		sender:     sender,
		cfg:        cfg,
		metrics:    metrics,
		log:        log,
	}
}

// RunCycle выполняет один цикл рассылки. Ошибка доставки одному получателю
// не прерывает цикл: остальные получатели всё равно получают письмо,
// неудачи накапливаются в результате. Ошибка возвращается только если
// не удалось получить сами данные рассылки.
func (s *NotifierService) RunCycle(ctx context.Context) (CycleResult, error) {
	const op = "services.notifier.RunCycle"

	timer := prometheus.NewTimer(s.metrics.CycleDuration)
	defer timer.ObserveDuration()

	events, err := s.floods.Upcoming(ctx)
	if err != nil {
		return CycleResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(events) == 0 {
		s.log.Info("no upcoming floods, skipping notification cycle")
		return CycleResult{}, nil
	}

	recipients, err := s.recipients.ListActiveRecipients(ctx)
	if err != nil {
		return CycleResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var result CycleResult
	for _, recipient := range recipients {
		msg := s.alertEmail(recipient, events)
		if err := s.sender.Send(msg); err != nil {
			s.log.Error("failed to send flood alert", slog.String("id", recipient.ID), sl.Err(err))
			s.metrics.NotificationErrors.Inc()
			result.Failed++
			result.FailedRecipients = append(result.FailedRecipients, recipient.Email)
			continue
		}
		s.metrics.NotificationsSent.Inc()
		result.Sent++
	}

	s.log.Info("notification cycle finished",
		slog.Int("events", len(events)),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed))
	return result, nil
}

// alertEmail собирает письмо-уведомление с персональной ссылкой отписки.
func (s *NotifierService) alertEmail(recipient *models.Subscriber, events []models.FloodEvent) sendersvc.EmailMessage {
	unsubscribeURL := s.unsubscribeURL(recipient.ID)

	var text strings.Builder
	text.WriteString("The bike path may flood at the following times:\n\n")
	for _, e := range events {
		fmt.Fprintf(&text, "- %s, predicted tide %s ft\n", e.DisplayTime, e.DisplayHeight)
	}
	fmt.Fprintf(&text, "\nUnsubscribe: %s\n", unsubscribeURL)

	var html strings.Builder
	html.WriteString("<html><body><p>The bike path may flood at the following times:</p><ul>")
	for _, e := range events {
		fmt.Fprintf(&html, "<li>%s, predicted tide %s ft</li>", e.DisplayTime, e.DisplayHeight)
	}
	fmt.Fprintf(&html, "</ul><p><a href=%q>Unsubscribe</a></p></body></html>", unsubscribeURL)

	return sendersvc.EmailMessage{
		To:       recipient.Email,
		Subject:  "Flood alert: upcoming high tides",
		TextBody: text.String(),
		HTMLBody: html.String(),
		Headers: map[string]string{
			"List-Unsubscribe": "<" + unsubscribeURL + ">",
		},
	}
}

// unsubscribeURL строит персональную ссылку отписки получателя.
func (s *NotifierService) unsubscribeURL(subscriberID string) string {
	token := unsubtoken.Issue(subscriberID, s.cfg.UnsubscribeSecret)
	return fmt.Sprintf("%s/unsubscribe?id=%s&token=%s", s.cfg.PublicBaseURL, subscriberID, token)
}
