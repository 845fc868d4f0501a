package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

const userColumns = `id, name, surname, email, phone, password_hash, role, city, date_of_birth, goal, created_at, updated_at`

func scanUser(row rowScanner, u *models.User) error {
	var dateOfBirth sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Role, &u.City, &dateOfBirth, &u.Goal, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	if dateOfBirth.Valid {
		u.DateOfBirth = &dateOfBirth.Time
	}
	return nil
}

// RegisterUser сохраняет нового пользователя и возвращает его ID.
// Занятый email возвращает models.ErrAlreadyExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	var newID string
	query := `INSERT INTO users (name, surname, email, phone, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Surname, user.Email, user.Phone, user.PasswordHash, string(role),
	).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: email %q: %w", op, user.Email, models.ErrAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	id, err := parseID(op, userID)
	if err != nil {
		return nil, err
	}

	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err = scanUser(row, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateProfile частично обновляет профиль. Роль и пароль здесь не меняются.
func (s *Storage) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	const op = "storage.UpdateProfile"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	id, err := parseID(op, userID)
	if err != nil {
		return nil, err
	}

	query := `UPDATE users
			  SET name          = COALESCE($2::text, name),
			      surname       = COALESCE($3::text, surname),
			      email         = COALESCE($4::text, email),
			      phone         = COALESCE($5::text, phone),
			      city          = COALESCE($6::text, city),
			      date_of_birth = COALESCE($7::date, date_of_birth),
			      goal          = COALESCE($8::text, goal),
			      updated_at    = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, id, patch.Name, patch.Surname, patch.Email,
		patch.Phone, patch.City, patch.DateOfBirth, patch.Goal)
	if err = scanUser(row, u); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		case isUniqueViolation(err):
			return nil, fmt.Errorf("%s: email: %w", op, models.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
