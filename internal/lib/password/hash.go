// Package password хеширует пароли пользователей bcrypt и сверяет их при входе.
// Ошибки сводятся к доменным: слишком длинный пароль - ErrInvalidArgument,
// несовпадение - ErrInvalidCredentials.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// MaxBytes - предел длины пароля в байтах, дальше bcrypt не принимает.
const MaxBytes = 72

// GetHash возвращает bcrypt-хэш пароля для хранения в users.password_hash.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	if len(password) > MaxBytes {
		return "", fmt.Errorf("%s: %w: password longer than %d bytes", op, models.ErrInvalidArgument, MaxBytes)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сверяет сохранённый хэш с паролем из запроса на вход.
func CompareHash(storedHash, candidate string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	default:
		return fmt.Errorf("%s: stored hash: %w", op, err)
	}
}
