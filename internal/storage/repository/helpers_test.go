package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/bloom-gym/internal/migrations"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return storage, cleanup
}

// TestDataFactory создаёт тестовые данные напрямую в базе.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создаёт пользователя с ролью и возвращает его ID.
func (f *TestDataFactory) CreateUser(t *testing.T, email string, role models.Role) string {
	t.Helper()
	id, err := f.storage.RegisterUser(context.Background(), models.User{
		Name:         "Anna",
		Surname:      "Petrova",
		Email:        email,
		Phone:        "+79990000000",
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return id
}

// CreateBooking создаёт запись с заданным статусом и временем создания.
func (f *TestDataFactory) CreateBooking(t *testing.T, ownerID, title string, day time.Time,
	status models.BookingStatus, createdAt time.Time) string {
	t.Helper()
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO bookings
		(owner_id, program_title, category, date, time, note, status, created_at, updated_at)
		VALUES ($1, $2, 'yoga', $3, '10:00', '', $4, $5, $5)
		RETURNING id`,
		ownerID, title, day, string(status), createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}
