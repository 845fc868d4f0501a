// Package policy содержит правила допуска новых записей, проверку прав
// доступа к существующим записям и жизненный цикл записи.
package policy

import "github.com/magabrotheeeer/bloom-gym/internal/models"

// MaxActiveBookings - максимальное число активных записей для ролей с лимитом.
const MaxActiveBookings = 3

// Decision - результат проверки допуска.
type Decision struct {
	Allowed bool
	Reason  string
}

// IsCapped сообщает, действует ли для роли лимит активных записей.
// Модератор ограничен так же, как обычный пользователь.
func IsCapped(role models.Role) bool {
	switch role {
	case models.RolePremium, models.RoleAdmin:
		return false
	case models.RoleUser, models.RoleModerator:
		return true
	default:
		return true
	}
}

// CanCreateBooking решает, может ли владелец с ролью role создать новую запись,
// если у него уже activeCount активных записей.
func CanCreateBooking(role models.Role, activeCount int) Decision {
	if !IsCapped(role) {
		return Decision{Allowed: true}
	}
	if activeCount < MaxActiveBookings {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reason: models.ErrAdmissionDenied.Error()}
}

// Admit возвращает ErrAdmissionDenied, если создание записи запрещено.
func Admit(role models.Role, activeCount int) error {
	if d := CanCreateBooking(role, activeCount); !d.Allowed {
		return models.ErrAdmissionDenied
	}
	return nil
}
