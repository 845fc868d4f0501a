// Package cache реализует кэш записей на занятия поверх Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/bloom-gym/internal/config"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

const bookingKeyPrefix = "booking:"

// Cache хранит значения в Redis в виде JSON.
type Cache struct {
	Db  *redis.Client
	ttl time.Duration
}

// InitServer подключается к Redis и проверяет соединение.
// ttl задаёт срок жизни закэшированных записей.
func InitServer(ctx context.Context, cfg config.RedisConnection, ttl time.Duration) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, ttl: ttl}, nil
}

// Close закрывает клиент Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}

// Ping проверяет доступность Redis.
func (c *Cache) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx).Err()
}

// Get читает значение по ключу в result. false означает промах.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение с указанным сроком жизни.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = c.Db.Set(ctx, key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	const op = "cache.Invalidate"
	if err := c.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func bookingKey(id string) string {
	return bookingKeyPrefix + id
}

// GetBooking возвращает запись из кэша.
func (c *Cache) GetBooking(ctx context.Context, id string) (*models.Booking, bool, error) {
	var b models.Booking
	found, err := c.Get(ctx, bookingKey(id), &b)
	if err != nil || !found {
		return nil, false, err
	}
	return &b, true, nil
}

// SetBooking кэширует запись на срок ttl.
func (c *Cache) SetBooking(ctx context.Context, b *models.Booking) error {
	return c.Set(ctx, bookingKey(b.ID), b, c.ttl)
}

// InvalidateBooking удаляет запись из кэша.
func (c *Cache) InvalidateBooking(ctx context.Context, id string) error {
	return c.Invalidate(ctx, bookingKey(id))
}
