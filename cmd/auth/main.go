// Package main реализует точку входа службы аутентификации.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"streamnest/internal/auth/adapters/cache"
	authhttp "streamnest/internal/auth/adapters/http"
	"streamnest/internal/auth/adapters/metrics"
	"streamnest/internal/auth/adapters/postgres"
	"streamnest/internal/auth/adapters/services"
	"streamnest/internal/auth/app"
	"streamnest/internal/auth/config"
	"streamnest/internal/auth/db"
	"streamnest/internal/auth/ports/repositories"
	"streamnest/pkg/db/redis"
	"streamnest/pkg/logger"
	"streamnest/pkg/retry"
	"streamnest/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "AUTH_LOGGER_MODE"
	EnvLoggerLevel = "AUTH_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInvalidConfig        = "invalid configuration, refusing to start"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitRedis            = "profile cache unavailable, continuing without it"
	ErrStartHTTP            = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "authentication service started"
	LogServiceShutdownDone = "authentication service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing Redis connection"
	LogInitRepo            = "initializing repositories"
	LogInitCache           = "initializing profile cache"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			if errors.Is(err, config.ErrConfiguration) {
				log.Error(ctx, ErrInvalidConfig, zap.Error(err))
			} else {
				log.Error(ctx, ErrLoadConfig, zap.Error(err))
			}
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		signing, err := cfg.JWT.SigningConfig()
		if err != nil {
			log.Error(ctx, ErrInvalidConfig, zap.Error(err))
			exitCode = 1
			return
		}

		var database *db.DB
		err = retry.New("postgres", cfg.Startup.RetryConfig()).Execute(ctx, func(ctx context.Context) error {
			var connectErr error
			database, connectErr = db.New(ctx, &cfg.Postgres, cfg.Postgres.MigrationsDir)
			return connectErr
		})
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitRepo)
		repoFactory := postgres.NewRepositoryFactory(database.Pool())

		log.Info(ctx, LogInitCache)
		var (
			profileCache repositories.ProfileCache
			redisClient  *redis.Client
		)
		err = retry.New("redis", cfg.Startup.RetryConfig()).Execute(ctx, func(ctx context.Context) error {
			var connectErr error
			redisClient, connectErr = redis.NewClient(ctx, cfg.Redis.Options())
			return connectErr
		})
		if err != nil {
			redisClient = nil
			log.Warn(ctx, ErrInitRedis, zap.Error(err))
		} else {
			profileCache = cache.NewProfileCache(redisClient, cfg.Redis.ProfileTTL)
		}

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(signing, cfg.JWT.RefreshTokenTTL, cfg.JWT.BCryptCost, time.Now)
		authMetrics := metrics.NewPrometheus()

		log.Info(ctx, LogInitUseCases)
		authUseCase := app.NewAuthUseCase(
			repoFactory.UserRepository(),
			serviceFactory.PasswordService(),
			serviceFactory.TokenService(),
			serviceFactory.RefreshService(),
			authMetrics,
			cfg.RequestTimeout,
		)
		userUseCase := app.NewUserUseCase(repoFactory.UserRepository(), profileCache)

		log.Info(ctx, LogInitHTTPServer)
		server := authhttp.NewServer(&cfg.HTTP, authhttp.Deps{
			AuthUseCase:    authUseCase,
			UserUseCase:    userUseCase,
			TokenService:   serviceFactory.TokenService(),
			MetricsHandler: authMetrics.Handler(),
		})

		if err := server.Start(ctx); err != nil {
			log.Error(ctx, ErrStartHTTP, zap.Error(err))
			if closeErr := database.Close(ctx); closeErr != nil {
				log.Error(ctx, LogClosingDB, zap.Error(closeErr))
			}
			exitCode = 1
			return
		}

		// HTTP останавливается первым, хранилища закрываются после последнего запроса.
		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(), func(ctx context.Context) error {
			stopErr := server.Stop(ctx)

			var redisErr error
			if redisClient != nil {
				log.Info(ctx, LogClosingRedis)
				redisErr = redisClient.Close(ctx)
			}

			log.Info(ctx, LogClosingDB)
			return errors.Join(stopErr, redisErr, database.Close(ctx))
		})

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
