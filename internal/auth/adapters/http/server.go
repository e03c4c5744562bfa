package http

import (
	"context"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"streamnest/internal/auth/config"
	"streamnest/pkg/logger"
)

// Константы для логирования.
const (
	LogServerStarting = "starting HTTP server"
	LogServerStarted  = "HTTP server started"
	LogServerStopping = "stopping HTTP server"
	LogServerStopped  = "HTTP server stopped"
	ErrServerStart    = "failed to start HTTP server"
	ErrServerStop     = "failed to stop HTTP server"
)

// Server представляет HTTP сервер.
type Server struct {
	cfg *config.HTTPConfig
	app *fiber.App
}

// NewServer создает сервер с настроенными маршрутами.
func NewServer(cfg *config.HTTPConfig, deps Deps) *Server {
	app := NewApp(cfg)
	SetupRouter(app, deps)
	return &Server{cfg: cfg, app: app}
}

// App возвращает fiber приложение.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start занимает адрес и обслуживает запросы в отдельной горутине.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)
	address := s.cfg.GetAddress()

	log.Info(ctx, LogServerStarting, zap.String("address", address))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error(ctx, ErrServerStart, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrServerStart, err)
	}

	go func() {
		if err := s.app.Listener(listener, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			log.Error(ctx, ErrServerStart, zap.Error(err))
		}
	}()

	log.Info(ctx, LogServerStarted, zap.String("address", listener.Addr().String()))
	return nil
}

// Stop дожидается завершения активных запросов в пределах ctx.
func (s *Server) Stop(ctx context.Context) error {
	log := logger.Log(ctx)

	log.Info(ctx, LogServerStopping)
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		log.Error(ctx, ErrServerStop, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrServerStop, err)
	}
	log.Info(ctx, LogServerStopped)
	return nil
}
