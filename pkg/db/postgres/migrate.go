package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // драйвер postgres для migrate
	_ "github.com/golang-migrate/migrate/v4/source/file"       // источник file://
	"go.uber.org/zap"

	"streamnest/pkg/logger"
)

// Константы для сообщений об ошибках миграций.
const (
	ErrCreateMigrationInstance = "failed to create migration instance"
	ErrApplyMigrations         = "failed to apply migrations"
	ErrCloseMigrationSource    = "failed to close migration source"
	ErrCloseMigrationDatabase  = "failed to close migration database"
)

// MigrateDSN применяет миграции из migrationsPath к базе dsn.
// Отсутствие новых миграций ошибкой не считается.
func MigrateDSN(ctx context.Context, dsn string, migrationsPath string) error {
	log := logger.Log(ctx).With(zap.String("path", migrationsPath))

	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		log.Error(ctx, ErrCreateMigrationInstance, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrCreateMigrationInstance, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warn(ctx, ErrCloseMigrationSource, zap.Error(srcErr))
		}
		if dbErr != nil {
			log.Warn(ctx, ErrCloseMigrationDatabase, zap.Error(dbErr))
		}
	}()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info(ctx, LogNoMigrations)
		return nil
	case err != nil:
		log.Error(ctx, ErrApplyMigrations, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrApplyMigrations, err)
	}

	log.Info(ctx, LogMigrationsApplied)
	return nil
}
