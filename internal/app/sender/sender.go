// Package sender собирает процесс отправки писем: читает очереди
// уведомлений и доставляет письма через SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/bloom-gym/internal/config"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/smtp"
	"github.com/magabrotheeeer/bloom-gym/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/bloom-gym/internal/services/sender"
	"github.com/magabrotheeeer/bloom-gym/internal/storage/repository"
)

// App представляет приложение отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	db            *repository.Storage
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к базе и брокеру и объявляет очереди.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	if !cfg.MailEnabled {
		logger.Warn("mail is disabled, messages will be logged and acknowledged")
	}
	transport := smtp.NewTransport(cfg.Mail, logger)
	senderService := senderservice.NewService(db, transport, logger, cfg.MailEnabled)

	return &App{
		conn:          conn,
		ch:            ch,
		db:            db,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run потребляет все очереди уведомлений до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	var consumers []*sync.WaitGroup
	for _, q := range rabbitmq.GetNotificationQueues() {
		wg, err := rabbitmq.ConsumerMessage(ctx, a.ch, q.QueueName, a.logger, a.senderService.Handle)
		if err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			a.close()
			return fmt.Errorf("start consumer %s: %w", q.QueueName, err)
		}
		consumers = append(consumers, wg)
	}
	a.logger.Info("sender service started", slog.Int("queues", len(consumers)))

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	for _, wg := range consumers {
		wg.Wait()
	}
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
