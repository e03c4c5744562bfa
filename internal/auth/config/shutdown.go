package config

import (
	"time"
)

// ShutdownConfig содержит настройки для graceful shutdown.
type ShutdownConfig struct {
	Timeout time.Duration `env:"AUTH_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// GetTimeout возвращает время на завершение работы.
func (s *ShutdownConfig) GetTimeout() time.Duration {
	return s.Timeout
}
