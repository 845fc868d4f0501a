package policy

import (
	"fmt"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// ValidatePatch отклоняет пустое изменение.
func ValidatePatch(patch models.BookingPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("%w: at least one field must be provided", models.ErrInvalidArgument)
	}
	return nil
}

// CheckTransition проверяет, что изменение допустимо для текущего состояния.
// Отменённая запись заморожена: ни статус, ни поля больше не меняются.
func CheckTransition(current models.Booking, patch models.BookingPatch) error {
	switch current.Status {
	case models.StatusCancelled:
		return models.ErrInvalidTransition
	case models.StatusBooked:
		if patch.Status == nil {
			return nil
		}
		switch *patch.Status {
		case models.StatusBooked, models.StatusCancelled:
			return nil
		default:
			return fmt.Errorf("%w: unknown status %q", models.ErrInvalidArgument, *patch.Status)
		}
	default:
		return fmt.Errorf("%w: unknown current status %q", models.ErrInvalidArgument, current.Status)
	}
}

// ApplyPatch возвращает копию записи с применённым изменением.
func ApplyPatch(current models.Booking, patch models.BookingPatch) (models.Booking, error) {
	if err := ValidatePatch(patch); err != nil {
		return current, err
	}
	if err := CheckTransition(current, patch); err != nil {
		return current, err
	}

	next := current
	if patch.ProgramTitle != nil {
		next.ProgramTitle = *patch.ProgramTitle
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if patch.Time != nil {
		next.Time = *patch.Time
	}
	if patch.Note != nil {
		next.Note = *patch.Note
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	return next, nil
}

// IsCancellation сообщает, переводит ли изменение запись в отменённую.
func IsCancellation(current models.Booking, patch models.BookingPatch) bool {
	return current.Status == models.StatusBooked &&
		patch.Status != nil && *patch.Status == models.StatusCancelled
}
