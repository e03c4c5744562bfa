package config

import (
	"time"

	"streamnest/pkg/retry"
)

// StartupConfig задает повторы подключения к Postgres и Redis при запуске.
type StartupConfig struct {
	Attempts   int           `env:"AUTH_STARTUP_ATTEMPTS" env-default:"5"`
	Backoff    time.Duration `env:"AUTH_STARTUP_BACKOFF" env-default:"500ms"`
	MaxBackoff time.Duration `env:"AUTH_STARTUP_MAX_BACKOFF" env-default:"5s"`
}

// RetryConfig возвращает настройки повторов.
func (s *StartupConfig) RetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = s.Attempts
	cfg.InitialBackoff = s.Backoff
	cfg.MaxBackoff = s.MaxBackoff
	return cfg
}
