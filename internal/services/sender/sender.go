// Package sender доставляет уведомления из очередей по электронной почте.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/smtp"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// UserRepository - источник адреса получателя.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Service формирует письма по уведомлениям и отправляет их через SMTP.
type Service struct {
	users     UserRepository
	transport smtp.TransportInterface
	log       *slog.Logger
	enabled   bool
}

// NewService создает новый экземпляр Service. При enabled == false письма
// только логируются.
func NewService(users UserRepository, transport smtp.TransportInterface, log *slog.Logger, enabled bool) *Service {
	return &Service{
		users:     users,
		transport: transport,
		log:       log,
		enabled:   enabled,
	}
}

type email struct {
	to      string
	subject string
	body    string
}

// Handle обрабатывает одно сообщение из очереди. Ошибка означает, что
// сообщение нужно вернуть в очередь; битые сообщения и удалённые
// пользователи пропускаются.
func (s *Service) Handle(ctx context.Context, body []byte) error {
	const op = "sender.Handle"
	log := s.log.With(sl.Op(op))

	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Error("failed to unmarshal message body, dropping", sl.Err(err))
		return nil
	}
	log = log.With(slog.String("type", n.Type), slog.String("user_id", n.UserID))

	user, err := s.users.GetUser(ctx, n.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidArgument) {
			log.Warn("recipient not found, dropping", sl.Err(err))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	msg, ok := compose(n, user)
	if !ok {
		log.Warn("unknown notification type, dropping")
		return nil
	}

	if !s.enabled {
		log.Info("mail disabled, skipping", slog.String("to", msg.to), slog.String("subject", msg.subject))
		return nil
	}

	if err := s.sendEmail([]string{msg.to}, msg.subject, msg.body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func greeting(u *models.User) string {
	if u.Name == "" {
		return "Hi"
	}
	return "Hi " + u.Name
}

func compose(n models.Notification, u *models.User) (email, bool) {
	msg := email{to: u.Email}
	switch n.Type {
	case models.UserRegistered:
		msg.subject = "Welcome to Bloom GYM"
		msg.body = greeting(u) + ", welcome! Your account has been created successfully."
	case models.BookingCreated:
		msg.subject = "Your Bloom GYM booking is confirmed"
		msg.body = fmt.Sprintf("%s, you are booked for %s on %s%s.",
			greeting(u), n.ProgramTitle, n.Date, at(n.Time))
	case models.BookingCancelled:
		msg.subject = "Your Bloom GYM booking was cancelled"
		msg.body = fmt.Sprintf("%s, your booking for %s on %s%s has been cancelled.",
			greeting(u), n.ProgramTitle, n.Date, at(n.Time))
	case models.BookingReminder:
		msg.subject = "Reminder: your class at Bloom GYM is tomorrow"
		msg.body = fmt.Sprintf("%s, see you tomorrow at %s on %s%s.",
			greeting(u), n.ProgramTitle, n.Date, at(n.Time))
	default:
		return email{}, false
	}
	return msg, true
}

func at(t string) string {
	if t == "" {
		return ""
	}
	return " at " + t
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.From(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	sender := s.transport.Sender()
	if err := client.Mail(sender); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", sender), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
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

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
