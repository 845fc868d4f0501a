package models

// Ключи маршрутизации событий в обменнике уведомлений.
const (
	EventWelcome  = "welcome"
	EventBooking  = "booking"
	EventReminder = "reminder"
)

// Типы событий.
const (
	UserRegistered   = "user.registered"
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingReminder  = "booking.reminder"
)

// Notification - сообщение в очередь уведомлений. Получатель определяется
// по UserID на стороне отправителя писем.
type Notification struct {
	Type         string `json:"type"`
	UserID       string `json:"user_id"`
	BookingID    string `json:"booking_id,omitempty"`
	ProgramTitle string `json:"program_title,omitempty"`
	Date         string `json:"date,omitempty"`
	Time         string `json:"time,omitempty"`
}
