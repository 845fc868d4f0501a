// Package models содержит доменные структуры сервиса записи в зал:
// пользователей, роли, записи на занятия и уведомления.
package models

import (
	"fmt"
	"time"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	City         string     `json:"city"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Goal         string     `json:"goal"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Identity - результат аутентификации: кто выполняет запрос и с какой ролью.
type Identity struct {
	UserID string
	Role   Role
}

// ProfilePatch - частичное изменение профиля. nil означает «не менять».
type ProfilePatch struct {
	Name        *string
	Surname     *string
	Email       *string
	Phone       *string
	City        *string
	DateOfBirth *time.Time
	Goal        *string
}

// IsEmpty сообщает, что ни одно поле не задано.
func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Surname == nil && p.Email == nil && p.Phone == nil &&
		p.City == nil && p.DateOfBirth == nil && p.Goal == nil
}

// DummyProfilePatch используется для приёма изменений профиля из JSON-запроса.
type DummyProfilePatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Surname     *string `json:"surname,omitempty" validate:"omitempty,min=2,max=50"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,min=6,max=30"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Goal        *string `json:"goal,omitempty" validate:"omitempty,max=200"`
}

// ToPatch разбирает запрос в ProfilePatch.
func (d DummyProfilePatch) ToPatch() (ProfilePatch, error) {
	p := ProfilePatch{
		Name:    d.Name,
		Surname: d.Surname,
		Email:   d.Email,
		Phone:   d.Phone,
		City:    d.City,
		Goal:    d.Goal,
	}
	if d.DateOfBirth != nil {
		dob, err := time.Parse(DateLayout, *d.DateOfBirth)
		if err != nil {
			return ProfilePatch{}, fmt.Errorf("%w: date_of_birth: %v", ErrInvalidArgument, err)
		}
		p.DateOfBirth = &dob
	}
	return p, nil
}
