// Package redis предоставляет общую реализацию клиента Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"streamnest/pkg/logger"
)

// ErrCacheMiss возвращается, если ключ отсутствует.
var ErrCacheMiss = errors.New("cache miss")

const (
	logConnecting = "connecting to Redis"
	logConnected  = "successfully connected to Redis"
	logClosing    = "closing Redis connection"

	errConnect = "failed to connect to Redis"
)

// Client обертывает клиент Redis и предоставляет базовые операции.
type Client struct {
	client *redis.Client
}

// NewClient создает клиент Redis и проверяет соединение.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	log := logger.Log(ctx).With(zap.String("addr", cfg.Addr()))
	log.Info(ctx, logConnecting)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		log.Error(ctx, errConnect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errConnect, err)
	}

	log.Info(ctx, logConnected)
	return &Client{client: rdb}, nil
}

// NewFromRedis оборачивает готовый клиент go-redis.
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{client: rdb}
}

// Get получает значение по ключу. Для отсутствующего ключа возвращает ErrCacheMiss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

// Set устанавливает значение с указанным TTL.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete удаляет ключи.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Close закрывает соединение с Redis.
func (c *Client) Close(ctx context.Context) error {
	logger.Log(ctx).Info(ctx, logClosing)
	return c.client.Close()
}
