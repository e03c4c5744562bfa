// Package config содержит конфигурацию сервиса аутентификации.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	pkgconfig "streamnest/pkg/config"
	"streamnest/pkg/logger"
)

// ErrConfiguration возвращается для конфигурации, с которой сервис не может стартовать.
var ErrConfiguration = errors.New("invalid configuration")

// ServiceName - имя сервиса в логах и метриках.
const ServiceName = "auth"

// Константы ошибок и сообщений для конфигурации.
const (
	LogConfigLoaded      = "authentication service configuration loaded"
	ErrFailedLoadConfig  = "failed to load configuration"
	ErrFailedValidConfig = "configuration validation failed"

	errMissingSecret  = "JWT_SECRET must be set"
	errBadTimeout     = "AUTH_REQUEST_TIMEOUT must be positive"
	errBadRefreshTTL  = "AUTH_JWT_REFRESH_TOKEN_TTL must be positive"
	errBadBcryptCost  = "AUTH_BCRYPT_COST is out of range"
	errBadHTTPPort    = "AUTH_HTTP_PORT is out of range"
	errBadIssuer      = "AUTH_JWT_ISSUER must be set"
	errBadAudience    = "AUTH_JWT_AUDIENCE must be set"
	errBadPoolBounds  = "AUTH_POSTGRES_MIN_CONN must not exceed AUTH_POSTGRES_MAX_CONN"
	errBadCacheTTL    = "AUTH_REDIS_PROFILE_TTL must not be negative"
	minBcryptCost     = 4
	maxBcryptCost     = 31
	maxPort           = 65535
	defaultConfigPath = pkgconfig.DefaultEnvPath
)

// Config представляет полную конфигурацию сервиса.
type Config struct {
	Postgres       PostgresConfig
	Redis          RedisConfig
	HTTP           HTTPConfig
	JWT            JWTConfig
	Logging        LoggingConfig
	Shutdown       ShutdownConfig
	Startup        StartupConfig
	RequestTimeout time.Duration `env:"AUTH_REQUEST_TIMEOUT" env-default:"5s"`
}

// Load загружает и проверяет конфигурацию.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, defaultConfigPath)
}

// LoadFrom загружает конфигурацию из envPath или окружения и проверяет ее.
func LoadFrom(ctx context.Context, envPath string) (*Config, error) {
	log := logger.Log(ctx)

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, envPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrFailedValidConfig, zap.Error(err))
		return nil, err
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("redis_addr", cfg.Redis.Options().Addr()),
		zap.String("http_addr", cfg.HTTP.GetAddress()),
		zap.String("jwt_issuer", cfg.JWT.Issuer),
		zap.String("jwt_audience", cfg.JWT.Audience),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("shutdown_timeout", cfg.Shutdown.GetTimeout()))

	return cfg, nil
}

// Validate проверяет значения, которые cleanenv не может проверить сам.
func (c *Config) Validate() error {
	if _, err := c.JWT.SigningConfig(); err != nil {
		return err
	}

	switch {
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: %s", ErrConfiguration, errBadTimeout)
	case c.JWT.BCryptCost < minBcryptCost || c.JWT.BCryptCost > maxBcryptCost:
		return fmt.Errorf("%w: %s", ErrConfiguration, errBadBcryptCost)
	case c.HTTP.Port <= 0 || c.HTTP.Port > maxPort:
		return fmt.Errorf("%w: %s", ErrConfiguration, errBadHTTPPort)
	case c.Postgres.MinConn > c.Postgres.MaxConn:
		return fmt.Errorf("%w: %s", ErrConfiguration, errBadPoolBounds)
	case c.Redis.ProfileTTL < 0:
		return fmt.Errorf("%w: %s", ErrConfiguration, errBadCacheTTL)
	}

	return nil
}
