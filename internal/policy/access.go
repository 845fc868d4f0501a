package policy

import (
	"fmt"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// Action - действие над существующей записью.
type Action int

const (
	// ActionRead - чтение записи.
	ActionRead Action = iota
	// ActionUpdate - изменение полей или статуса.
	ActionUpdate
	// ActionDelete - удаление.
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Authorize проверяет, может ли who выполнить action над записью b.
// Чтение и изменение доступны владельцу и администратору,
// удаление только администратору.
func Authorize(action Action, who models.Identity, b *models.Booking) error {
	isOwner := b != nil && b.OwnerID == who.UserID
	isAdmin := who.Role == models.RoleAdmin

	var allowed bool
	switch action {
	case ActionRead, ActionUpdate:
		allowed = isOwner || isAdmin
	case ActionDelete:
		allowed = isAdmin
	}
	if !allowed {
		return fmt.Errorf("%w: %s booking as %s", models.ErrForbidden, action, who.Role)
	}
	return nil
}

// CanListAll проверяет право на просмотр всех записей.
func CanListAll(role models.Role) error {
	switch role {
	case models.RoleAdmin, models.RoleModerator:
		return nil
	case models.RoleUser, models.RolePremium:
		return fmt.Errorf("%w: list all bookings as %s", models.ErrForbidden, role)
	default:
		return fmt.Errorf("%w: list all bookings as %s", models.ErrForbidden, role)
	}
}
