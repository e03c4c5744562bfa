package config

import (
	"fmt"
	"time"
)

// HTTPConfig конфигурация HTTP сервера.
type HTTPConfig struct {
	Host         string        `env:"AUTH_HTTP_HOST" env-default:"0.0.0.0"`
	Port         int           `env:"AUTH_HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"AUTH_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"AUTH_HTTP_WRITE_TIMEOUT" env-default:"10s"`
	BodyLimit    int           `env:"AUTH_HTTP_BODY_LIMIT" env-default:"65536"`
}

// GetAddress возвращает адрес для HTTP сервера.
func (h *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}
