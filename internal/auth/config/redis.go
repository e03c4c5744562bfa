package config

import (
	"time"

	"streamnest/pkg/db/redis"
)

// RedisConfig содержит настройки кеша профилей.
type RedisConfig struct {
	Host       string        `env:"AUTH_REDIS_HOST" env-default:"redis"`
	Port       int           `env:"AUTH_REDIS_PORT" env-default:"6379"`
	Password   string        `env:"AUTH_REDIS_PASSWORD" env-default:""`
	DB         int           `env:"AUTH_REDIS_DB" env-default:"0"`
	PoolSize   int           `env:"AUTH_REDIS_POOL_SIZE" env-default:"10"`
	Timeout    time.Duration `env:"AUTH_REDIS_TIMEOUT" env-default:"5s"`
	ProfileTTL time.Duration `env:"AUTH_REDIS_PROFILE_TTL" env-default:"15m"`
}

// Options возвращает конфигурацию клиента Redis. Нулевые значения заменяются значениями по умолчанию.
func (r *RedisConfig) Options() *redis.Config {
	opts := redis.DefaultConfig()
	if r.Host != "" {
		opts.Host = r.Host
	}
	if r.Port > 0 {
		opts.Port = r.Port
	}
	opts.Password = r.Password
	opts.DB = r.DB
	if r.PoolSize > 0 {
		opts.PoolSize = r.PoolSize
	}
	if r.Timeout > 0 {
		opts.Timeout = r.Timeout
	}
	return opts
}
