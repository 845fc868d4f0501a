// Package scheduler периодически публикует напоминания о завтрашних занятиях.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// BookingRepository источник записей на день и отметок об отправленных напоминаниях.
type BookingRepository interface {
	FindBookingsToRemind(ctx context.Context, day time.Time) ([]models.Booking, error)
	MarkReminded(ctx context.Context, bookingID string, day time.Time) error
}

// Publisher отправляет уведомления в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service ищет активные записи на завтра и ставит напоминания в очередь.
type Service struct {
	repo      BookingRepository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo BookingRepository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Run выполняет проход сразу и затем каждые interval, пока не отменён ctx.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.runOnceLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnceLogged(ctx)
		}
	}
}

func (s *Service) runOnceLogged(ctx context.Context) {
	if _, err := s.RemindTomorrow(ctx); err != nil {
		s.log.Error("reminder pass failed", sl.Err(err))
	}
}

// RemindTomorrow публикует напоминание для каждой активной записи на
// завтрашний день, о которой ещё не напоминали, и возвращает число
// опубликованных сообщений. Ошибка публикации отдельного сообщения не
// прерывает проход: запись останется неотмеченной и попадёт в следующий.
func (s *Service) RemindTomorrow(ctx context.Context) (int, error) {
	const op = "scheduler.RemindTomorrow"

	tomorrow := s.now().AddDate(0, 0, 1)
	s.log.Info("looking for bookings", slog.String("date", tomorrow.Format(models.DateLayout)))

	bookings, err := s.repo.FindBookingsToRemind(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(bookings) == 0 {
		s.log.Info("no bookings for tomorrow")
		return 0, nil
	}

	published := 0
	for _, b := range bookings {
		msg := models.Notification{
			Type:         models.BookingReminder,
			UserID:       b.OwnerID,
			BookingID:    b.ID,
			ProgramTitle: b.ProgramTitle,
			Date:         b.Date.Format(models.DateLayout),
			Time:         b.Time,
		}
		if err = s.publisher.Publish(ctx, models.EventReminder, msg); err != nil {
			s.log.Error("failed to publish reminder", slog.String("booking_id", b.ID), sl.Err(err))
			continue
		}
		published++
		if err = s.repo.MarkReminded(ctx, b.ID, b.Date); err != nil {
			s.log.Warn("failed to mark reminder as sent", slog.String("booking_id", b.ID), sl.Err(err))
		}
	}
	s.log.Info("reminders published", slog.Int("count", published), slog.Int("found", len(bookings)))
	return published, nil
}
