package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

func TestStorage_RegisterUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	user := models.User{
		Name:         "Ivan",
		Surname:      "Ivanov",
		Email:        "ivan@example.com",
		Phone:        "+79991234567",
		PasswordHash: "hash",
	}
	id, err := storage.RegisterUser(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := storage.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", got.Email)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Nil(t, got.DateOfBirth)

	_, err = storage.RegisterUser(ctx, user)
	require.ErrorIs(t, err, models.ErrAlreadyExists)
}

func TestStorage_GetUserByEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id := NewTestDataFactory(storage).CreateUser(t, "find@example.com", models.RoleAdmin)

	got, err := storage.GetUserByEmail(ctx, "find@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = storage.GetUserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = storage.GetUser(ctx, uuid.NewString())
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_UpdateProfile(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	factory := NewTestDataFactory(storage)
	id := factory.CreateUser(t, "profile@example.com", models.RoleUser)
	factory.CreateUser(t, "taken@example.com", models.RoleUser)

	city := "Kazan"
	dob := time.Date(1995, 6, 1, 0, 0, 0, 0, time.UTC)
	updated, err := storage.UpdateProfile(ctx, id, models.ProfilePatch{City: &city, DateOfBirth: &dob})
	require.NoError(t, err)
	assert.Equal(t, "Kazan", updated.City)
	require.NotNil(t, updated.DateOfBirth)
	assert.Equal(t, "1995-06-01", updated.DateOfBirth.Format(models.DateLayout))
	assert.Equal(t, "Anna", updated.Name)

	taken := "taken@example.com"
	_, err = storage.UpdateProfile(ctx, id, models.ProfilePatch{Email: &taken})
	require.ErrorIs(t, err, models.ErrAlreadyExists)
}
