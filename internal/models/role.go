package models

import "fmt"

// Role - роль пользователя. Набор значений закрыт, неизвестные строки
// отклоняются ParseRole.
type Role string

const (
	// RoleUser - обычный пользователь, по умолчанию при регистрации.
	RoleUser Role = "user"
	// RolePremium - пользователь без ограничения на число активных записей.
	RolePremium Role = "premium"
	// RoleModerator - может просматривать все записи.
	RoleModerator Role = "moderator"
	// RoleAdmin - полный доступ.
	RoleAdmin Role = "admin"
)

// ParseRole преобразует строку в Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RolePremium, RoleModerator, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, s)
	}
}

func (r Role) String() string {
	return string(r)
}
