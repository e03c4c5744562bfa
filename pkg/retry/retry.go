// Package retry повторяет операции с экспоненциальной задержкой.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	goretry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"streamnest/pkg/logger"
)

// Config содержит настройки повторов.
type Config struct {
	// MaxAttempts - максимальное количество попыток, включая первую.
	MaxAttempts int
	// InitialBackoff - задержка перед второй попыткой.
	InitialBackoff time.Duration
	// MaxBackoff - верхняя граница задержки.
	MaxBackoff time.Duration
	// ShouldRetry решает, стоит ли повторять операцию после ошибки.
	ShouldRetry func(error) bool
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		ShouldRetry:    defaultShouldRetry,
	}
}

// ErrContextCanceled возвращается, если контекст отменили во время ожидания.
var ErrContextCanceled = errors.New("context was canceled during retry")

func defaultShouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Константы для логирования.
const (
	LogRetryOperation   = "retry operation"
	LogRetryAttempt     = "retry attempt"
	LogRetrySuccess     = "retry succeeded"
	LogRetryMaxAttempts = "retry max attempts reached"
)

// Retry выполняет функцию с повторными попытками.
type Retry struct {
	name   string
	config Config
}

// New создает Retry. Незаданные поля берутся из DefaultConfig.
func New(name string, config Config) *Retry {
	defaults := DefaultConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	if config.ShouldRetry == nil {
		config.ShouldRetry = defaults.ShouldRetry
	}
	return &Retry{name: name, config: config}
}

// Execute вызывает operation, пока она не завершится успешно, не вернет неповторяемую ошибку
// или не кончатся попытки. Возвращается последняя ошибка operation.
func (r *Retry) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	log := logger.Log(ctx).With(zap.String("retry", r.name))
	log.Debug(ctx, LogRetryOperation)

	backoff := goretry.NewExponential(r.config.InitialBackoff)
	backoff = goretry.WithCappedDuration(r.config.MaxBackoff, backoff)
	backoff = goretry.WithMaxRetries(uint64(r.config.MaxAttempts-1), backoff)

	attempts := 0
	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		err := operation(ctx)
		if err == nil {
			if attempts > 1 {
				log.Info(ctx, LogRetrySuccess, zap.Int("attempts", attempts))
			}
			return nil
		}
		if !r.config.ShouldRetry(err) {
			return err
		}
		if attempts >= r.config.MaxAttempts {
			log.Warn(ctx, LogRetryMaxAttempts, zap.Int("attempts", attempts), zap.Error(err))
			return err
		}

		log.Info(ctx, LogRetryAttempt, zap.Int("attempt", attempts), zap.Error(err))
		return goretry.RetryableError(err)
	})

	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return fmt.Errorf("%w: %w", ErrContextCanceled, err)
	}
	return err
}
