// Package config загружает конфигурацию сервисов из .env файла или переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"streamnest/pkg/logger"
)

// DefaultEnvPath - путь к .env файлу относительно рабочей директории.
const DefaultEnvPath = "deploy/.env"

const (
	msgLoadingConfiguration = "loading configuration"
	msgConfigurationLoaded  = "configuration loaded successfully"
	msgEnvFileMissing       = "env file not found, reading process environment"

	errFailedLoadConfiguration = "failed to load configuration"
	errFailedStatEnvFile       = "failed to stat env file"

	attrService = "service"
	attrPath    = "path"
)

// Load заполняет T из envPath, если файл существует, иначе только из окружения.
// Переменные окружения процесса имеют приоритет над значениями из файла.
func Load[T any](ctx context.Context, serviceName, envPath string) (*T, error) {
	log := logger.Log(ctx).With(zap.String(attrService, serviceName))

	log.Info(ctx, msgLoadingConfiguration, zap.String(attrPath, envPath))

	var cfg T

	_, statErr := os.Stat(envPath)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(envPath, &cfg); err != nil {
			log.Error(ctx, errFailedLoadConfiguration, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
		}
	case errors.Is(statErr, fs.ErrNotExist):
		log.Debug(ctx, msgEnvFileMissing, zap.String(attrPath, envPath))
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Error(ctx, errFailedLoadConfiguration, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
		}
	default:
		log.Error(ctx, errFailedStatEnvFile, zap.Error(statErr))
		return nil, fmt.Errorf("%s: %w", errFailedStatEnvFile, statErr)
	}

	log.Info(ctx, msgConfigurationLoaded)

	return &cfg, nil
}
