package booking

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// memRepo хранит записи в памяти и ведёт себя как PostgreSQL-хранилище
// в части ошибок и порядка выдачи.
type memRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	users    map[string]models.OwnerSummary
	clock    time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		bookings: map[string]models.Booking{},
		users:    map[string]models.OwnerSummary{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) addUser(id string, summary models.OwnerSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = summary
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed id", models.ErrInvalidArgument)
	}
	return nil
}

func (r *memRepo) insertLocked(b models.Booking) *models.Booking {
	r.clock = r.clock.Add(time.Second)
	b.ID = uuid.NewString()
	b.Status = models.StatusBooked
	b.CreatedAt = r.clock
	b.UpdatedAt = r.clock
	r.bookings[b.ID] = b
	return &b
}

func (r *memRepo) countLocked(ownerID string) int {
	n := 0
	for _, b := range r.bookings {
		if b.OwnerID == ownerID && b.IsActive() {
			n++
		}
	}
	return n
}

func (r *memRepo) CreateBooking(_ context.Context, b models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(b), nil
}

func (r *memRepo) CreateBookingTx(_ context.Context, b models.Booking, admit func(int) error) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := admit(r.countLocked(b.OwnerID)); err != nil {
		return nil, err
	}
	return r.insertLocked(b), nil
}

func (r *memRepo) CountActiveBookings(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(ownerID), nil
}

func (r *memRepo) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &b, nil
}

func (r *memRepo) sortedLocked() []models.Booking {
	out := make([]models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memRepo) ListBookingsByOwner(_ context.Context, ownerID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Booking, 0)
	for _, b := range r.sortedLocked() {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepo) ListAllBookings(_ context.Context) ([]models.BookingWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BookingWithOwner, 0)
	for _, b := range r.sortedLocked() {
		out = append(out, models.BookingWithOwner{Booking: b, Owner: r.users[b.OwnerID]})
	}
	return out, nil
}

func (r *memRepo) UpdateBooking(_ context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !b.IsActive() {
		return nil, fmt.Errorf("%w: booking is %s", models.ErrInvalidTransition, b.Status)
	}
	if patch.ProgramTitle != nil {
		b.ProgramTitle = *patch.ProgramTitle
	}
	if patch.Category != nil {
		b.Category = *patch.Category
	}
	if patch.Date != nil {
		b.Date = *patch.Date
	}
	if patch.Time != nil {
		b.Time = *patch.Time
	}
	if patch.Note != nil {
		b.Note = *patch.Note
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	r.clock = r.clock.Add(time.Second)
	b.UpdatedAt = r.clock
	r.bookings[id] = b
	return &b, nil
}

func (r *memRepo) DeleteBooking(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

// memCache простой кэш для сценарных тестов.
type memCache struct {
	mu    sync.Mutex
	items map[string]models.Booking
}

func newMemCache() *memCache {
	return &memCache{items: map[string]models.Booking{}}
}

func (c *memCache) GetBooking(_ context.Context, id string) (*models.Booking, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	return &b, true, nil
}

func (c *memCache) SetBooking(_ context.Context, b *models.Booking) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[b.ID] = *b
	return nil
}

func (c *memCache) InvalidateBooking(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

// CacheMock мок кэша для проверки поведения при сбоях.
type CacheMock struct{ mock.Mock }

func (m *CacheMock) GetBooking(ctx context.Context, id string) (*models.Booking, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Booking), args.Bool(1), args.Error(2)
}

func (m *CacheMock) SetBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *CacheMock) InvalidateBooking(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// PublisherMock мок публикатора уведомлений.
type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

type fakeMetrics struct {
	mu                                        sync.Mutex
	created, cancelled, deleted, denied, fail int
}

func (f *fakeMetrics) BookingCreated()      { f.mu.Lock(); f.created++; f.mu.Unlock() }
func (f *fakeMetrics) BookingCancelled()    { f.mu.Lock(); f.cancelled++; f.mu.Unlock() }
func (f *fakeMetrics) BookingDeleted()      { f.mu.Lock(); f.deleted++; f.mu.Unlock() }
func (f *fakeMetrics) AdmissionDenied()     { f.mu.Lock(); f.denied++; f.mu.Unlock() }
func (f *fakeMetrics) PublishFailed(string) { f.mu.Lock(); f.fail++; f.mu.Unlock() }

// cancelAfterRead отменяет запись сразу после того, как сервис её прочитал,
// имитируя параллельную отмену между чтением и записью.
type cancelAfterRead struct {
	*memRepo
}

func (r cancelAfterRead) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := r.memRepo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	stored := r.bookings[id]
	stored.Status = models.StatusCancelled
	r.bookings[id] = stored
	r.mu.Unlock()
	return b, nil
}
