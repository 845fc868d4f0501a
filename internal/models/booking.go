package models

import (
	"fmt"
	"time"
)

// DateLayout - формат даты занятия в запросах и ответах.
const DateLayout = "2006-01-02"

// BookingStatus - состояние записи.
type BookingStatus string

const (
	// StatusBooked - активная запись, начальное состояние.
	StatusBooked BookingStatus = "booked"
	// StatusCancelled - отменённая запись, конечное состояние.
	StatusCancelled BookingStatus = "cancelled"
)

// Category - направление тренировки.
type Category string

const (
	CategoryStrength Category = "strength"
	CategoryCardio   Category = "cardio"
	CategoryYoga     Category = "yoga"
	CategoryDance    Category = "dance"
)

// Booking - запись пользователя на одно занятие программы.
type Booking struct {
	ID           string        `json:"id"`
	OwnerID      string        `json:"owner_id"`
	ProgramTitle string        `json:"program_title"`
	Category     Category      `json:"category"`
	Date         time.Time     `json:"date"`
	Time         string        `json:"time"`
	Note         string        `json:"note"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsActive сообщает, учитывается ли запись в лимите активных.
func (b Booking) IsActive() bool {
	return b.Status == StatusBooked
}

// OwnerSummary - минимальные данные владельца для общего списка записей.
type OwnerSummary struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Role    Role   `json:"role"`
}

// BookingWithOwner - запись вместе с данными владельца.
type BookingWithOwner struct {
	Booking
	Owner OwnerSummary `json:"user"`
}

// BookingPatch - частичное изменение записи. nil означает «не менять».
type BookingPatch struct {
	ProgramTitle *string
	Category     *Category
	Date         *time.Time
	Time         *string
	Note         *string
	Status       *BookingStatus
}

// IsEmpty сообщает, что ни одно поле не задано.
func (p BookingPatch) IsEmpty() bool {
	return p.ProgramTitle == nil && p.Category == nil && p.Date == nil &&
		p.Time == nil && p.Note == nil && p.Status == nil
}

// DummyBooking используется для приёма данных новой записи из JSON-запроса.
// Дата приходит строкой, чтобы её можно было провалидировать и разобрать.
type DummyBooking struct {
	ProgramTitle string `json:"program_title" validate:"required,min=2,max=120"`
	Category     string `json:"category" validate:"required,oneof=strength cardio yoga dance"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time,omitempty" validate:"max=20"`
	Note         string `json:"note,omitempty" validate:"max=500"`
}

// DummyBookingPatch используется для приёма изменений записи из JSON-запроса.
type DummyBookingPatch struct {
	ProgramTitle *string `json:"program_title,omitempty" validate:"omitempty,min=2,max=120"`
	Category     *string `json:"category,omitempty" validate:"omitempty,oneof=strength cardio yoga dance"`
	Date         *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time         *string `json:"time,omitempty" validate:"omitempty,max=20"`
	Note         *string `json:"note,omitempty" validate:"omitempty,max=500"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=booked cancelled"`
}

// ToBooking разбирает запрос в новую запись. Владелец и статус
// назначаются сервисом.
func (d DummyBooking) ToBooking() (Booking, error) {
	day, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return Booking{}, fmt.Errorf("%w: date: %v", ErrInvalidArgument, err)
	}
	return Booking{
		ProgramTitle: d.ProgramTitle,
		Category:     Category(d.Category),
		Date:         day,
		Time:         d.Time,
		Note:         d.Note,
	}, nil
}

// ToPatch разбирает запрос в BookingPatch.
func (d DummyBookingPatch) ToPatch() (BookingPatch, error) {
	p := BookingPatch{
		ProgramTitle: d.ProgramTitle,
		Time:         d.Time,
		Note:         d.Note,
	}
	if d.Category != nil {
		c := Category(*d.Category)
		p.Category = &c
	}
	if d.Status != nil {
		s := BookingStatus(*d.Status)
		p.Status = &s
	}
	if d.Date != nil {
		day, err := time.Parse(DateLayout, *d.Date)
		if err != nil {
			return BookingPatch{}, fmt.Errorf("%w: date: %v", ErrInvalidArgument, err)
		}
		p.Date = &day
	}
	return p, nil
}
