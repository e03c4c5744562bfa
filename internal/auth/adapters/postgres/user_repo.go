// Package postgres реализует хранение пользователей сервиса аутентификации в PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
	"streamnest/internal/auth/ports/repositories"
	"streamnest/pkg/logger"
)

// PgxPoolInterface - часть pgxpool.Pool, которой пользуется репозиторий.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Имена уникальных ограничений из migrations/auth.
const (
	constraintEmailUnique    = "users_email_lower_key"
	constraintUsernameUnique = "users_username_key"
	codeUniqueViolation      = "23505"
)

const userColumns = `id, email, username, first_name, last_name, password_hash, role,
        refresh_token_hash, refresh_token_expiry, created_at, updated_at`

// UserRepository реализует интерфейс repositories.UserRepository для работы с Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

// Create сохраняет нового пользователя. Идентификатор генерируется, если не задан.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
        INSERT INTO users (id, email, username, first_name, last_name, password_hash, role)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		id,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role.String(),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			log.Debug(ctx, "duplicate user", zap.String("constraint", pgErr.ConstraintName))
			if pgErr.ConstraintName == constraintUsernameUnique {
				return nil, services.ErrUsernameAlreadyExists
			}
			return nil, services.ErrEmailAlreadyExists
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, "FindByID", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail находит пользователя по email без учета регистра.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "FindByEmail", `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)))
}

// FindByUsername находит пользователя по имени.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, "FindByUsername", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) findOne(ctx context.Context, method, query string, arg string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found")
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user", zap.Error(err))
		return nil, fmt.Errorf("error querying user (%s): %w", method, err)
	}

	return user, nil
}

// StoreRefreshToken сохраняет хэш и срок действия refresh токена пользователя.
func (r *UserRepository) StoreRefreshToken(ctx context.Context, user *entities.User) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "StoreRefreshToken"))

	query := `
        UPDATE users
        SET refresh_token_hash = $2, refresh_token_expiry = $3, updated_at = NOW()
        WHERE id = $1
    `

	result, err := r.pool.Exec(ctx, query, user.ID, nullableString(user.RefreshTokenHash), user.RefreshTokenExpiry)
	if err != nil {
		log.Error(ctx, "error storing refresh token", zap.Error(err))
		return fmt.Errorf("error storing refresh token: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "user not found for refresh token update", zap.String("id", user.ID))
		return entities.ErrUserNotFound
	}

	return nil
}

// RotateRefreshToken заменяет хэш refresh токена в транзакции.
// Если сохраненный хэш уже не равен previousHash, возвращает services.ErrInvalidRefreshToken.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, user *entities.User, previousHash string) (err error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "RotateRefreshToken"))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "error starting transaction", zap.Error(err))
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Warn(ctx, "error rolling back transaction", zap.Error(rbErr))
			}
		}
	}()

	var current *string
	err = tx.QueryRow(ctx, `SELECT refresh_token_hash FROM users WHERE id = $1 FOR UPDATE`, user.ID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = entities.ErrUserNotFound
			return err
		}
		log.Error(ctx, "error locking user row", zap.Error(err))
		err = fmt.Errorf("error locking user row: %w", err)
		return err
	}

	if current == nil || *current != previousHash {
		log.Warn(ctx, "refresh token was rotated concurrently", zap.String("username", user.Username))
		err = services.ErrInvalidRefreshToken
		return err
	}

	_, err = tx.Exec(ctx, `
        UPDATE users
        SET refresh_token_hash = $2, refresh_token_expiry = $3, updated_at = NOW()
        WHERE id = $1
    `, user.ID, nullableString(user.RefreshTokenHash), user.RefreshTokenExpiry)
	if err != nil {
		log.Error(ctx, "error rotating refresh token", zap.Error(err))
		err = fmt.Errorf("error rotating refresh token: %w", err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error(ctx, "error committing transaction", zap.Error(err))
		err = fmt.Errorf("error committing transaction: %w", err)
		return err
	}

	return nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var (
		user        entities.User
		role        string
		refreshHash *string
		expiry      *time.Time
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&role,
		&refreshHash,
		&expiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsedRole, err := entities.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", user.ID, err)
	}
	user.Role = parsedRole

	if refreshHash != nil {
		user.RefreshTokenHash = *refreshHash
	}
	user.RefreshTokenExpiry = expiry

	return &user, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
