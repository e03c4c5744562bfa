// Package shutdown ожидает сигнала завершения и выполняет хуки остановки в пределах таймаута.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"streamnest/pkg/logger"
)

const (
	msgSignalReceived  = "shutdown signal received"
	msgContextDone     = "parent context done, shutting down"
	msgHookFailed      = "shutdown hook failed"
	msgShutdownTimeout = "shutdown timeout exceeded"
)

// Hook освобождает один ресурс.
type Hook func(ctx context.Context) error

// Wait блокируется до SIGINT/SIGTERM или отмены ctx, затем вызывает Run.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	log := logger.Log(ctx)

	select {
	case sig := <-sigCh:
		log.Info(ctx, msgSignalReceived, zap.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info(ctx, msgContextDone)
	}

	Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run параллельно выполняет хуки и ждет их завершения не дольше timeout.
// Возвращает false, если таймаут истек раньше.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) bool {
	log := logger.Log(ctx)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Add(1)
		go func(fn Hook) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.Error(ctx, msgHookFailed, zap.Error(err))
			}
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		log.Warn(ctx, msgShutdownTimeout, zap.Duration("timeout", timeout))
		return false
	}
}
