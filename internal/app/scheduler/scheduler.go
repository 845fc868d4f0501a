// Package scheduler собирает процесс, который публикует напоминания
// о завтрашних занятиях.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/bloom-gym/internal/config"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/rabbitmq"
	schedulerservice "github.com/magabrotheeeer/bloom-gym/internal/services/scheduler"
	"github.com/magabrotheeeer/bloom-gym/internal/storage/repository"
)

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	publisher        *rabbitmq.LazyPublisher
	db               *repository.Storage
	interval         time.Duration
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	var err error
	for range dbReadyAttempts {
		if err = repository.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbReadyDelay):
		}
	}
	return fmt.Errorf("database not ready after retries: %w", err)
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("rabbitmq url is required for the scheduler")
	}

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = waitForDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	publisher := rabbitmq.NewLazyPublisher(logger, rabbitmq.DialURL(cfg.RabbitMQURL))

	return &App{
		schedulerService: schedulerservice.NewService(db, publisher, logger),
		publisher:        publisher,
		db:               db,
		interval:         cfg.Interval,
		logger:           logger,
	}, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("scheduler started", slog.Duration("interval", a.interval))
	a.schedulerService.Run(ctx, a.interval)

	a.logger.Info("shutting down scheduler service")
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("failed to close publisher", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
