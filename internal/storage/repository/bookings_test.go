package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
	"github.com/magabrotheeeer/bloom-gym/internal/policy"
)

func newBooking(ownerID string) models.Booking {
	return models.Booking{
		OwnerID:      ownerID,
		ProgramTitle: "Morning Yoga",
		Category:     models.CategoryYoga,
		Date:         time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Time:         "09:00",
		Note:         "mat needed",
	}
}

func TestStorage_CreateAndGetBooking(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := NewTestDataFactory(storage).CreateUser(t, "owner@example.com", models.RoleUser)

	created, err := storage.CreateBooking(ctx, newBooking(ownerID))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusBooked, created.Status)

	got, err := storage.GetBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, got.OwnerID)
	assert.Equal(t, "Morning Yoga", got.ProgramTitle)
	assert.Equal(t, models.CategoryYoga, got.Category)
	assert.Equal(t, "2025-03-14", got.Date.Format(models.DateLayout))
	assert.Equal(t, "09:00", got.Time)
	assert.Equal(t, "mat needed", got.Note)
	assert.Equal(t, models.StatusBooked, got.Status)
}

func TestStorage_GetBooking_Errors(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "malformed id", id: "not-a-uuid", wantErr: models.ErrInvalidArgument},
		{name: "unknown id", id: uuid.NewString(), wantErr: models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storage.GetBooking(ctx, tt.id)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStorage_CountActiveBookings(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	ownerID := factory.CreateUser(t, "count@example.com", models.RoleUser)
	otherID := factory.CreateUser(t, "other@example.com", models.RoleUser)
	now := time.Now()
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	factory.CreateBooking(t, ownerID, "A", day, models.StatusBooked, now)
	factory.CreateBooking(t, ownerID, "B", day, models.StatusBooked, now)
	factory.CreateBooking(t, ownerID, "C", day, models.StatusCancelled, now)
	factory.CreateBooking(t, otherID, "D", day, models.StatusBooked, now)

	count, err := storage.CountActiveBookings(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStorage_ListBookings_NewestFirst(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	ownerID := factory.CreateUser(t, "list@example.com", models.RoleUser)
	otherID := factory.CreateUser(t, "list-other@example.com", models.RolePremium)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	factory.CreateBooking(t, ownerID, "old", day, models.StatusBooked, base)
	factory.CreateBooking(t, ownerID, "new", day, models.StatusBooked, base.Add(time.Hour))
	factory.CreateBooking(t, otherID, "foreign", day, models.StatusBooked, base.Add(30*time.Minute))

	mine, err := storage.ListBookingsByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "new", mine[0].ProgramTitle)
	assert.Equal(t, "old", mine[1].ProgramTitle)

	all, err := storage.ListAllBookings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ProgramTitle)
	assert.Equal(t, "foreign", all[1].ProgramTitle)
	assert.Equal(t, "old", all[2].ProgramTitle)
	assert.Equal(t, "list-other@example.com", all[1].Owner.Email)
	assert.Equal(t, models.RolePremium, all[1].Owner.Role)
}

func TestStorage_UpdateBooking(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := NewTestDataFactory(storage).CreateUser(t, "upd@example.com", models.RoleUser)
	created, err := storage.CreateBooking(ctx, newBooking(ownerID))
	require.NoError(t, err)

	note := "bring water"
	cancelled := models.StatusCancelled
	updated, err := storage.UpdateBooking(ctx, created.ID, models.BookingPatch{Note: &note, Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, "bring water", updated.Note)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, "Morning Yoga", updated.ProgramTitle, "untouched fields stay")
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = storage.UpdateBooking(ctx, uuid.NewString(), models.BookingPatch{Note: &note})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_UpdateBooking_CancelledIsFrozen(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := NewTestDataFactory(storage).CreateUser(t, "frozen@example.com", models.RoleUser)
	created, err := storage.CreateBooking(ctx, newBooking(ownerID))
	require.NoError(t, err)

	// Отмена, закоммиченная после того, как вызывающий прочитал запись в статусе booked.
	snapshot, err := storage.GetBooking(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusBooked, snapshot.Status)
	cancelled := models.StatusCancelled
	_, err = storage.UpdateBooking(ctx, created.ID, models.BookingPatch{Status: &cancelled})
	require.NoError(t, err)

	booked := models.StatusBooked
	note := "x"
	_, err = storage.UpdateBooking(ctx, created.ID, models.BookingPatch{Status: &booked, Note: &note})
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = storage.UpdateBooking(ctx, created.ID, models.BookingPatch{Note: &note})
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	got, err := storage.GetBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, "mat needed", got.Note)

	active, err := storage.CountActiveBookings(ctx, ownerID)
	require.NoError(t, err)
	assert.Zero(t, active)
}

func TestStorage_DeleteBooking(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := NewTestDataFactory(storage).CreateUser(t, "del@example.com", models.RoleUser)
	created, err := storage.CreateBooking(ctx, newBooking(ownerID))
	require.NoError(t, err)

	require.NoError(t, storage.DeleteBooking(ctx, created.ID))

	_, err = storage.GetBooking(ctx, created.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	err = storage.DeleteBooking(ctx, created.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_CreateBookingTx_Admission(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := NewTestDataFactory(storage).CreateUser(t, "tx@example.com", models.RoleUser)
	admit := func(active int) error { return policy.Admit(models.RoleUser, active) }

	for range policy.MaxActiveBookings {
		_, err := storage.CreateBookingTx(ctx, newBooking(ownerID), admit)
		require.NoError(t, err)
	}

	_, err := storage.CreateBookingTx(ctx, newBooking(ownerID), admit)
	require.ErrorIs(t, err, models.ErrAdmissionDenied)

	count, err := storage.CountActiveBookings(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, policy.MaxActiveBookings, count)

	_, err = storage.CreateBookingTx(ctx, newBooking(uuid.NewString()), admit)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_CreateBookingTx_Concurrent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := NewTestDataFactory(storage).CreateUser(t, "race@example.com", models.RoleUser)
	admit := func(active int) error { return policy.Admit(models.RoleUser, active) }

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		denied  int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := storage.CreateBookingTx(ctx, newBooking(ownerID), admit)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, models.ErrAdmissionDenied):
				denied++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, policy.MaxActiveBookings, created)
	assert.Equal(t, workers-policy.MaxActiveBookings, denied)
}

func TestStorage_FindBookingsToRemind(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	ownerID := factory.CreateUser(t, "remind@example.com", models.RoleUser)
	tomorrow := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	remindID := factory.CreateBooking(t, ownerID, "tomorrow", tomorrow, models.StatusBooked, now)
	factory.CreateBooking(t, ownerID, "tomorrow-cancelled", tomorrow, models.StatusCancelled, now)
	factory.CreateBooking(t, ownerID, "later", tomorrow.AddDate(0, 0, 2), models.StatusBooked, now)

	got, err := storage.FindBookingsToRemind(ctx, tomorrow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tomorrow", got[0].ProgramTitle)

	require.NoError(t, storage.MarkReminded(ctx, remindID, tomorrow))
	got, err = storage.FindBookingsToRemind(ctx, tomorrow)
	require.NoError(t, err)
	assert.Empty(t, got, "second pass finds nothing")

	// Перенос на другой день снова требует напоминания.
	moved := tomorrow.AddDate(0, 0, 1)
	_, err = storage.UpdateBooking(ctx, remindID, models.BookingPatch{Date: &moved})
	require.NoError(t, err)
	got, err = storage.FindBookingsToRemind(ctx, moved)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, remindID, got[0].ID)

	err = storage.MarkReminded(ctx, uuid.NewString(), tomorrow)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestCheckDatabaseReady(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	require.NoError(t, CheckDatabaseReady(context.Background(), storage))
}
