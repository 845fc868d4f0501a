package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
)

// Channel - часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher публикует событие с ключом маршрутизации в обменник уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// PublishMessage сериализует message в JSON и публикует его как persistent.
func PublishMessage(ch Channel, exchange string, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Dialer открывает канал публикации и возвращает то, что нужно закрыть вместе с ним.
type Dialer func() (Channel, io.Closer, error)

// DialURL возвращает Dialer, который делает одну попытку подключения
// и объявляет очереди уведомлений.
func DialURL(url string) Dialer {
	return func() (Channel, io.Closer, error) {
		conn, err := Connect(url, 1, 0)
		if err != nil {
			return nil, nil, err
		}
		ch, err := SetupChannel(conn, GetNotificationQueues())
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return ch, conn, nil
	}
}

// LazyPublisher подключается к брокеру при первой публикации и дальше
// переиспользует соединение. Неудачное подключение или публикация сбрасывают
// состояние, следующая публикация подключается заново.
type LazyPublisher struct {
	log  *slog.Logger
	dial Dialer

	mu   sync.Mutex
	ch   Channel
	conn io.Closer
}

// NewLazyPublisher создаёт публикатор без подключения.
func NewLazyPublisher(log *slog.Logger, dial Dialer) *LazyPublisher {
	return &LazyPublisher{log: log, dial: dial}
}

// Publish публикует сообщение, при необходимости подключаясь к брокеру.
func (p *LazyPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	const op = "rabbitmq.LazyPublisher.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		ch, conn, err := p.dial()
		if err != nil {
			return fmt.Errorf("%s: connect: %w", op, err)
		}
		p.ch, p.conn = ch, conn
		p.log.Info("connected to message broker")
	}

	if err := PublishMessage(p.ch, ExchangeName, routingKey, message); err != nil {
		p.resetLocked()
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение, если они были открыты.
func (p *LazyPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func (p *LazyPublisher) resetLocked() {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			p.log.Debug("failed to close channel", sl.Err(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.log.Debug("failed to close connection", sl.Err(err))
		}
	}
	p.ch, p.conn = nil, nil
}

// NopPublisher используется, когда брокер не настроен: сообщение только логируется.
type NopPublisher struct {
	Log *slog.Logger
}

// Publish ничего не отправляет.
func (p NopPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	if p.Log != nil {
		p.Log.Debug("broker disabled, notification dropped", slog.String("routing_key", routingKey))
	}
	return nil
}
