package config

import (
	"fmt"
	"time"

	"streamnest/pkg/db/postgres"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host           string        `env:"AUTH_POSTGRES_HOST" env-default:"localhost"`
	Port           int           `env:"AUTH_POSTGRES_PORT" env-default:"5432"`
	User           string        `env:"AUTH_POSTGRES_USER" env-default:"postgres"`
	Password       string        `env:"AUTH_POSTGRES_PASSWORD" env-default:"postgres"`
	Database       string        `env:"AUTH_POSTGRES_DB" env-default:"streamnest"`
	MinConn        int32         `env:"AUTH_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn        int32         `env:"AUTH_POSTGRES_MAX_CONN" env-default:"10"`
	ConnectTimeout time.Duration `env:"AUTH_POSTGRES_CONNECT_TIMEOUT" env-default:"5s"`
	MigrationsDir  string        `env:"AUTH_POSTGRES_MIGRATIONS_DIR" env-default:"./migrations/auth"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

// PoolOptions возвращает параметры пула соединений.
func (p *PostgresConfig) PoolOptions() postgres.PoolOptions {
	return postgres.PoolOptions{
		MinConns:       p.MinConn,
		MaxConns:       p.MaxConn,
		ConnectTimeout: p.ConnectTimeout,
	}
}
