package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamnest/internal/auth/adapters/postgres"
	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
	"streamnest/pkg/logger"
)

var userColumns = []string{
	"id", "email", "username", "first_name", "last_name", "password_hash", "role",
	"refresh_token_hash", "refresh_token_expiry", "created_at", "updated_at",
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func strPtr(s string) *string { return &s }

func timePtr(v time.Time) *time.Time { return &v }

func TestUserRepository_Create(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	input := &entities.User{
		Email:        "alice@example.com",
		Username:     "alice",
		FirstName:    "Alice",
		LastName:     "Liddell",
		PasswordHash: "$2a$10$hash",
		Role:         entities.RoleConsumer,
	}

	insert := regexp.QuoteMeta("INSERT INTO users (id, email, username, first_name, last_name, password_hash, role)")

	t.Run("Успешное создание пользователя", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery(insert).
			WithArgs(pgxmock.AnyArg(), input.Email, input.Username, input.FirstName, input.LastName, input.PasswordHash, "Consumer").
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("user-1", input.Email, input.Username, input.FirstName, input.LastName, input.PasswordHash, "Consumer",
					nil, nil, now, now))

		user, err := postgres.NewUserRepository(mock).Create(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, entities.RoleConsumer, user.Role)
		assert.Empty(t, user.RefreshTokenHash)
		assert.Nil(t, user.RefreshTokenExpiry)
		assert.Equal(t, now, user.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Дубликат email", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery(insert).
			WithArgs(pgxmock.AnyArg(), input.Email, input.Username, input.FirstName, input.LastName, input.PasswordHash, "Consumer").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_key"})

		user, err := postgres.NewUserRepository(mock).Create(ctx, input)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, services.ErrEmailAlreadyExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Дубликат имени пользователя", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery(insert).
			WithArgs(pgxmock.AnyArg(), input.Email, input.Username, input.FirstName, input.LastName, input.PasswordHash, "Consumer").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		_, err := postgres.NewUserRepository(mock).Create(ctx, input)
		assert.ErrorIs(t, err, services.ErrUsernameAlreadyExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка базы данных", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery(insert).
			WithArgs(pgxmock.AnyArg(), input.Email, input.Username, input.FirstName, input.LastName, input.PasswordHash, "Consumer").
			WillReturnError(errors.New("connection reset"))

		_, err := postgres.NewUserRepository(mock).Create(ctx, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error creating user")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Find(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	expiry := now.Add(7 * 24 * time.Hour)

	row := func() *pgxmock.Rows {
		return pgxmock.NewRows(userColumns).
			AddRow("user-1", "Alice@Example.com", "alice", "Alice", "Liddell", "$2a$10$hash", "Creator",
				strPtr("stored-hash"), timePtr(expiry), now, now)
	}

	t.Run("Поиск по email без учета регистра", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = $1")).
			WithArgs("alice@example.com").
			WillReturnRows(row())

		user, err := postgres.NewUserRepository(mock).FindByEmail(ctx, "  ALICE@example.COM ")
		require.NoError(t, err)

		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, entities.RoleCreator, user.Role)
		assert.Equal(t, "stored-hash", user.RefreshTokenHash)
		require.NotNil(t, user.RefreshTokenExpiry)
		assert.Equal(t, expiry, *user.RefreshTokenExpiry)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Поиск по имени пользователя", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE username = $1")).
			WithArgs("alice").
			WillReturnRows(row())

		user, err := postgres.NewUserRepository(mock).FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пользователь не найден по ID", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		user, err := postgres.NewUserRepository(mock).FindByID(ctx, "missing")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Неизвестная роль в базе", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("user-1", "a@example.com", "alice", "", "", "hash", "Admin", nil, nil, now, now))

		_, err := postgres.NewUserRepository(mock).FindByID(ctx, "user-1")
		assert.ErrorIs(t, err, entities.ErrUnknownRole)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_StoreRefreshToken(t *testing.T) {
	ctx := testContext(t)
	expiry := time.Now().UTC().Add(time.Hour)
	user := &entities.User{ID: "user-1", RefreshTokenHash: "new-hash", RefreshTokenExpiry: &expiry}
	update := regexp.QuoteMeta("SET refresh_token_hash = $2, refresh_token_expiry = $3")

	t.Run("Успешное сохранение", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec(update).
			WithArgs("user-1", strPtr("new-hash"), &expiry).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, postgres.NewUserRepository(mock).StoreRefreshToken(ctx, user))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec(update).
			WithArgs("user-1", strPtr("new-hash"), &expiry).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := postgres.NewUserRepository(mock).StoreRefreshToken(ctx, user)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_RotateRefreshToken(t *testing.T) {
	ctx := testContext(t)
	expiry := time.Now().UTC().Add(time.Hour)
	user := &entities.User{ID: "user-1", Username: "alice", RefreshTokenHash: "next-hash", RefreshTokenExpiry: &expiry}

	lock := regexp.QuoteMeta("SELECT refresh_token_hash FROM users WHERE id = $1 FOR UPDATE")
	update := regexp.QuoteMeta("SET refresh_token_hash = $2, refresh_token_expiry = $3")

	t.Run("Успешная ротация", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows([]string{"refresh_token_hash"}).AddRow(strPtr("previous-hash")))
		mock.ExpectExec(update).WithArgs("user-1", strPtr("next-hash"), &expiry).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		require.NoError(t, postgres.NewUserRepository(mock).RotateRefreshToken(ctx, user, "previous-hash"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Хэш уже заменен параллельным запросом", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows([]string{"refresh_token_hash"}).AddRow(strPtr("someone-else")))
		mock.ExpectRollback()

		err := postgres.NewUserRepository(mock).RotateRefreshToken(ctx, user, "previous-hash")
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пользователь удален", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs("user-1").WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		err := postgres.NewUserRepository(mock).RotateRefreshToken(ctx, user, "previous-hash")
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка обновления", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows([]string{"refresh_token_hash"}).AddRow(strPtr("previous-hash")))
		mock.ExpectExec(update).WithArgs("user-1", strPtr("next-hash"), &expiry).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := postgres.NewUserRepository(mock).RotateRefreshToken(ctx, user, "previous-hash")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error rotating refresh token")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка начала транзакции", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

		err := postgres.NewUserRepository(mock).RotateRefreshToken(ctx, user, "previous-hash")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error starting transaction")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepositoryFactory(t *testing.T) {
	mock := newMock(t)
	assert.NotNil(t, postgres.NewRepositoryFactory(mock).UserRepository())
}
