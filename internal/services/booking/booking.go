// Package booking содержит бизнес-логику записей на занятия: проверку лимита
// при создании, проверку прав доступа, переходы статусов, кэширование
// и публикацию уведомлений.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
	"github.com/magabrotheeeer/bloom-gym/internal/policy"
)

const publishTimeout = 5 * time.Second

// Repository определяет методы хранилища записей.
type Repository interface {
	CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error)
	CreateBookingTx(ctx context.Context, booking models.Booking, admit func(active int) error) (*models.Booking, error)
	CountActiveBookings(ctx context.Context, ownerID string) (int, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
	ListAllBookings(ctx context.Context) ([]models.BookingWithOwner, error)
	UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// Cache кэш записей по идентификатору.
type Cache interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, bool, error)
	SetBooking(ctx context.Context, b *models.Booking) error
	InvalidateBooking(ctx context.Context, id string) error
}

// Publisher отправляет уведомления в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Metrics счётчики операций с записями.
type Metrics interface {
	BookingCreated()
	BookingCancelled()
	BookingDeleted()
	AdmissionDenied()
	PublishFailed(routingKey string)
}

// Service реализует операции над записями от имени аутентифицированного пользователя.
type Service struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	metrics   Metrics
	log       *slog.Logger
	strict    bool

	wg sync.WaitGroup
}

// NewService создает новый экземпляр Service. При strict лимит активных записей
// проверяется и новая запись вставляется в одной транзакции.
func NewService(repo Repository, cache Cache, publisher Publisher, metrics Metrics, log *slog.Logger, strict bool) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		strict:    strict,
	}
}

// Create создаёт запись в статусе booked от имени who.
func (s *Service) Create(ctx context.Context, who models.Identity, in models.Booking) (*models.Booking, error) {
	const op = "booking.Create"
	log := s.log.With(sl.Op(op), slog.String("user_id", who.UserID))

	in.OwnerID = who.UserID
	in.Status = models.StatusBooked

	created, err := s.admitAndCreate(ctx, who.Role, in)
	if err != nil {
		if errors.Is(err, models.ErrAdmissionDenied) {
			s.metrics.AdmissionDenied()
			log.Info("booking denied by active limit", slog.String("role", who.Role.String()))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.BookingCreated()
	log.Info("booking created", slog.String("booking_id", created.ID))

	if err = s.cache.SetBooking(ctx, created); err != nil {
		log.Warn("failed to cache booking", sl.Err(err))
	}
	s.notify(ctx, models.EventBooking, newNotification(models.BookingCreated, created))
	return created, nil
}

func (s *Service) admitAndCreate(ctx context.Context, role models.Role, in models.Booking) (*models.Booking, error) {
	if !policy.IsCapped(role) {
		return s.repo.CreateBooking(ctx, in)
	}
	admit := func(active int) error {
		return policy.Admit(role, active)
	}
	if s.strict {
		return s.repo.CreateBookingTx(ctx, in, admit)
	}

	active, err := s.repo.CountActiveBookings(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if err = admit(active); err != nil {
		return nil, err
	}
	return s.repo.CreateBooking(ctx, in)
}

// ListMine возвращает записи вызывающего пользователя, новые первыми.
func (s *Service) ListMine(ctx context.Context, who models.Identity) ([]models.Booking, error) {
	const op = "booking.ListMine"
	list, err := s.repo.ListBookingsByOwner(ctx, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// ListAll возвращает все записи с данными владельцев. Доступно admin и moderator.
func (s *Service) ListAll(ctx context.Context, who models.Identity) ([]models.BookingWithOwner, error) {
	const op = "booking.ListAll"
	if err := policy.CanListAll(who.Role); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := s.repo.ListAllBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get возвращает запись, если who её владелец или администратор.
func (s *Service) Get(ctx context.Context, who models.Identity, id string) (*models.Booking, error) {
	const op = "booking.Get"
	b, err := s.readThrough(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = policy.Authorize(policy.ActionRead, who, b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func (s *Service) readThrough(ctx context.Context, id string) (*models.Booking, error) {
	cached, found, err := s.cache.GetBooking(ctx, id)
	if err != nil {
		s.log.Warn("failed to read booking from cache", slog.String("booking_id", id), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.cache.SetBooking(ctx, b); err != nil {
		s.log.Warn("failed to cache booking", slog.String("booking_id", id), sl.Err(err))
	}
	return b, nil
}

// Update частично изменяет запись. Пустое изменение отклоняется до проверки
// прав, отменённая запись не изменяется.
func (s *Service) Update(ctx context.Context, who models.Identity, id string, patch models.BookingPatch) (*models.Booking, error) {
	const op = "booking.Update"
	log := s.log.With(sl.Op(op), slog.String("booking_id", id))

	if err := policy.ValidatePatch(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = policy.Authorize(policy.ActionUpdate, who, current); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = policy.ApplyPatch(*current, patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.UpdateBooking(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.InvalidateBooking(ctx, id); err != nil {
		log.Warn("failed to invalidate booking cache", sl.Err(err))
	}

	if policy.IsCancellation(*current, patch) {
		s.metrics.BookingCancelled()
		log.Info("booking cancelled")
		s.notify(ctx, models.EventBooking, newNotification(models.BookingCancelled, updated))
	}
	return updated, nil
}

// Delete удаляет запись. Доступно только администратору.
func (s *Service) Delete(ctx context.Context, who models.Identity, id string) error {
	const op = "booking.Delete"

	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = policy.Authorize(policy.ActionDelete, who, current); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.InvalidateBooking(ctx, id); err != nil {
		s.log.Warn("failed to invalidate booking cache", slog.String("booking_id", id), sl.Err(err))
	}
	s.metrics.BookingDeleted()
	s.log.Info("booking deleted", slog.String("booking_id", id), slog.String("by", who.UserID))
	return nil
}

// Wait дожидается завершения отправки уже поставленных уведомлений.
func (s *Service) Wait() {
	s.wg.Wait()
}

// notify публикует уведомление в фоне. Ошибка публикации не влияет на результат операции.
func (s *Service) notify(ctx context.Context, routingKey string, msg models.Notification) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(pubCtx, routingKey, msg); err != nil {
			s.metrics.PublishFailed(routingKey)
			s.log.Error("failed to publish notification",
				slog.String("type", msg.Type),
				slog.String("booking_id", msg.BookingID),
				sl.Err(err))
		}
	}()
}

func newNotification(kind string, b *models.Booking) models.Notification {
	return models.Notification{
		Type:         kind,
		UserID:       b.OwnerID,
		BookingID:    b.ID,
		ProgramTitle: b.ProgramTitle,
		Date:         b.Date.Format(models.DateLayout),
		Time:         b.Time,
	}
}
