// Package cache реализует кеш профилей пользователей в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/ports/repositories"
	"streamnest/pkg/db/redis"
	"streamnest/pkg/logger"
)

// DefaultProfileTTL - время жизни профиля в кеше по умолчанию.
const DefaultProfileTTL = 15 * time.Minute

const keyPrefix = "auth:profile:"

// KV - операции Redis, которые нужны кешу.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ProfileCache хранит профили в виде JSON.
type ProfileCache struct {
	kv  KV
	ttl time.Duration
}

// NewProfileCache создает кеш профилей. Нулевой ttl заменяется значением по умолчанию.
func NewProfileCache(kv KV, ttl time.Duration) repositories.ProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileCache{kv: kv, ttl: ttl}
}

// Get возвращает профиль или (nil, nil), если его нет в кеше.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*entities.Profile, error) {
	raw, err := c.kv.Get(ctx, key(userID))
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cached profile: %w", err)
	}

	var profile entities.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		logger.Log(ctx).Warn(ctx, "dropping corrupted cached profile", zap.String("userID", userID), zap.Error(err))
		_ = c.kv.Delete(ctx, key(userID))
		return nil, nil
	}

	return &profile, nil
}

// Set кладет профиль в кеш.
func (c *ProfileCache) Set(ctx context.Context, profile *entities.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := c.kv.Set(ctx, key(profile.ID), raw, c.ttl); err != nil {
		return fmt.Errorf("caching profile: %w", err)
	}
	return nil
}

func key(userID string) string {
	return keyPrefix + userID
}
