// Package profile содержит операции над профилем текущего пользователя.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// Repository хранилище профилей.
type Repository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
}

// Service читает и изменяет профиль.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetProfile возвращает профиль пользователя.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	const op = "profile.GetProfile"
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateProfile применяет частичное изменение. Новый email приводится
// к нижнему регистру и не должен принадлежать другому пользователю.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	const op = "profile.UpdateProfile"
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%s: %w: at least one field must be provided", op, models.ErrInvalidArgument)
	}

	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &email

		owner, err := s.repo.GetUserByEmail(ctx, email)
		switch {
		case err == nil && owner.ID != userID:
			return nil, fmt.Errorf("%s: email %q: %w", op, email, models.ErrAlreadyExists)
		case err != nil && !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	u, err := s.repo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("profile updated", slog.String("user_id", userID))
	return u, nil
}
