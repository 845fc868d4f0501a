package rabbitmq

import "github.com/magabrotheeeer/bloom-gym/internal/models"

// ExchangeName - обменник, через который идут все уведомления.
const ExchangeName = "notifications"

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Очереди уведомлений.
const (
	WelcomeQueue  = "notifications.welcome"
	BookingQueue  = "notifications.booking"
	ReminderQueue = "notifications.reminder"
)

// GetNotificationQueues возвращает все очереди, которые обслуживает отправитель писем.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: WelcomeQueue, RoutingKey: models.EventWelcome},
		{QueueName: BookingQueue, RoutingKey: models.EventBooking},
		{QueueName: ReminderQueue, RoutingKey: models.EventReminder},
	}
}
