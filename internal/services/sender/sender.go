// Package services реализует сборку и отправку писем через SMTP транспорт.
package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/flood-alert/internal/lib/sl"
	smtplib "github.com/magabrotheeeer/flood-alert/internal/lib/smtp"
)

// boundary разделитель частей multipart/alternative письма
const boundary = "=_flood-alert-alt"

// EmailMessage структурированное письмо: адресат, тема, текстовое и html тело
// и дополнительные заголовки (например List-Unsubscribe).
type EmailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}

// Transport интерфейс SMTP транспорта.
type Transport interface {
	Connect() (smtplib.Client, error)
	GetSMTPUser() string
}

// SenderService отправляет письма по одному соединению на письмо.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// Send собирает RFC 5322 сообщение и передает его транспорту.
// Каждая отправка независима: ошибка относится только к этому получателю.
func (s *SenderService) Send(msg EmailMessage) error {
	lines := []string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
	}
	for key, value := range msg.Headers {
		lines = append(lines, key+": "+value)
	}
	lines = append(lines,
		"Content-Type: multipart/alternative; boundary=\""+boundary+"\"",
		"",
		"--"+boundary,
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		msg.TextBody,
		"--"+boundary,
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		msg.HTMLBody,
		"--"+boundary+"--",
		"",
	)
	raw := strings.Join(lines, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close() //nolint:errcheck

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	if err := client.Rcpt(msg.To); err != nil {
		s.log.Error("failed to set RCPT TO", "recipient", msg.To, sl.Err(err))
		return err
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(raw)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.String("to", msg.To))
	return nil
}

// VerificationEmail письмо с одноразовой ссылкой подтверждения адреса.
func VerificationEmail(to, verificationLink string) EmailMessage {
	text := fmt.Sprintf(
		"Welcome! Please verify your email address to start receiving flood predictions for the bike path: %s",
		verificationLink)
	html := fmt.Sprintf(
		`<html><body><p>Welcome!</p><p>Please verify your email address to start receiving flood predictions for the bike path.</p><p><a href=%q>Verify my email</a></p></body></html>`,
		verificationLink)
	return EmailMessage{
		To:       to,
		Subject:  "Please verify your email",
		TextBody: text,
		HTMLBody: html,
	}
}
