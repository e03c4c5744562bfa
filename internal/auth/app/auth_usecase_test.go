package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"streamnest/internal/auth/app"
	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
	"streamnest/internal/auth/ports/api"
	svc "streamnest/internal/auth/ports/services"
)

var errDatabase = errors.New("database error")

type fixture struct {
	users     *mockUserRepository
	passwords *mockPasswordService
	tokens    *mockTokenService
	refresh   *mockRefreshService
	metrics   *mockMetrics
	useCase   api.AuthUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:     new(mockUserRepository),
		passwords: new(mockPasswordService),
		tokens:    new(mockTokenService),
		refresh:   new(mockRefreshService),
		metrics:   new(mockMetrics),
	}
	f.useCase = app.NewAuthUseCase(f.users, f.passwords, f.tokens, f.refresh, f.metrics, time.Second)

	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.passwords.AssertExpectations(t)
		f.tokens.AssertExpectations(t)
		f.refresh.AssertExpectations(t)
		f.metrics.AssertExpectations(t)
	})

	return f
}

func aliceUser() *entities.User {
	return &entities.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "bcrypt-hash",
		Role:         entities.RoleConsumer,
	}
}

func aliceClaims() services.Claims {
	return services.Claims{Subject: "user-1", Username: "alice", Role: "Consumer"}
}

func hasDeadline(ctx context.Context) bool {
	_, ok := ctx.Deadline()
	return ok
}

func TestLogin(t *testing.T) {
	accessExpiry := time.Date(2026, time.March, 1, 12, 15, 0, 0, time.UTC)
	refreshExpiry := accessExpiry.Add(7 * 24 * time.Hour)

	t.Run("success - tokens issued after refresh hash is stored", func(t *testing.T) {
		f := newFixture(t)
		user := aliceUser()

		f.users.On("FindByEmail", mock.MatchedBy(hasDeadline), "alice@example.com").Return(user, nil).Once()
		f.passwords.On("Verify", mock.Anything, "secret1", "bcrypt-hash").Return(true, nil).Once()
		f.tokens.On("GenerateAccessToken", mock.Anything, aliceClaims()).Return("access-1", accessExpiry, nil).Once()
		f.refresh.On("IssueAndStore", mock.Anything, mock.AnythingOfType("*entities.User"), true).
			Run(func(args mock.Arguments) {
				u := args.Get(1).(*entities.User)
				u.RefreshTokenHash = "hash-1"
				u.RefreshTokenExpiry = &refreshExpiry
			}).
			Return("refresh-1", nil).Once()
		f.users.On("StoreRefreshToken", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.ID == "user-1" && u.RefreshTokenHash == "hash-1" && u.RefreshTokenExpiry.Equal(refreshExpiry)
		})).Return(nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationLogin, svc.ResultSuccess).Once()

		pair, err := f.useCase.Login(context.Background(), " Alice@Example.com ", "secret1")
		require.NoError(t, err)

		assert.Equal(t, &services.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresAt: accessExpiry}, pair)
		assert.Equal(t, "hash-1", user.RefreshTokenHash)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, entities.ErrUserNotFound).Once()
		f.passwords.On("Hash", mock.Anything, mock.AnythingOfType("string")).Return("decoy-hash", nil).Once()
		f.passwords.On("Verify", mock.Anything, "secret1", "decoy-hash").Return(false, nil).Once()
		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(aliceUser(), nil).Once()
		f.passwords.On("Verify", mock.Anything, "wrong-password", "bcrypt-hash").Return(false, nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationLogin, svc.ResultInvalidCredentials).Twice()

		_, unknownErr := f.useCase.Login(context.Background(), "nobody@example.com", "secret1")
		_, wrongErr := f.useCase.Login(context.Background(), "alice@example.com", "wrong-password")

		require.ErrorIs(t, unknownErr, services.ErrInvalidCredentials)
		require.ErrorIs(t, wrongErr, services.ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("unknown email still pays for a password comparison", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, entities.ErrUserNotFound).Twice()
		f.passwords.On("Hash", mock.Anything, mock.AnythingOfType("string")).Return("decoy-hash", nil).Once()
		f.passwords.On("Verify", mock.Anything, "first-guess", "decoy-hash").Return(false, nil).Once()
		f.passwords.On("Verify", mock.Anything, "second-guess", "decoy-hash").Return(false, nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationLogin, svc.ResultInvalidCredentials).Twice()

		_, err := f.useCase.Login(context.Background(), "nobody@example.com", "first-guess")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
		_, err = f.useCase.Login(context.Background(), "nobody@example.com", "second-guess")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("decoy hash failure does not change the answer", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, entities.ErrUserNotFound).Once()
		f.passwords.On("Hash", mock.Anything, mock.AnythingOfType("string")).Return("", services.ErrHashingFailed).Once()
		f.metrics.On("ObserveAttempt", svc.OperationLogin, svc.ResultInvalidCredentials).Once()

		_, err := f.useCase.Login(context.Background(), "nobody@example.com", "secret1")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("empty password is rejected as invalid credentials", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(aliceUser(), nil).Once()
		f.passwords.On("Verify", mock.Anything, "", "bcrypt-hash").Return(false, services.ErrInvalidPassword).Once()
		f.metrics.On("ObserveAttempt", svc.OperationLogin, svc.ResultInvalidCredentials).Once()

		_, err := f.useCase.Login(context.Background(), "alice@example.com", "")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("repository failure is not reported as bad credentials", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, errDatabase).Once()
		f.metrics.On("ObserveAttempt", svc.OperationLogin, svc.ResultError).Once()

		_, err := f.useCase.Login(context.Background(), "alice@example.com", "secret1")
		require.ErrorIs(t, err, errDatabase)
		assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("store failure returns no tokens and leaves user untouched", func(t *testing.T) {
		f := newFixture(t)
		user := aliceUser()

		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(user, nil).Once()
		f.passwords.On("Verify", mock.Anything, "secret1", "bcrypt-hash").Return(true, nil).Once()
		f.tokens.On("GenerateAccessToken", mock.Anything, aliceClaims()).Return("access-1", accessExpiry, nil).Once()
		f.refresh.On("IssueAndStore", mock.Anything, mock.AnythingOfType("*entities.User"), true).
			Run(func(args mock.Arguments) { args.Get(1).(*entities.User).RefreshTokenHash = "hash-1" }).
			Return("refresh-1", nil).Once()
		f.users.On("StoreRefreshToken", mock.Anything, mock.Anything).Return(errDatabase).Once()
		f.metrics.On("ObserveAttempt", svc.OperationLogin, svc.ResultError).Once()

		pair, err := f.useCase.Login(context.Background(), "alice@example.com", "secret1")
		require.ErrorIs(t, err, errDatabase)
		assert.Nil(t, pair)
		assert.Empty(t, user.RefreshTokenHash)
	})

	t.Run("access token failure", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(aliceUser(), nil).Once()
		f.passwords.On("Verify", mock.Anything, "secret1", "bcrypt-hash").Return(true, nil).Once()
		f.tokens.On("GenerateAccessToken", mock.Anything, aliceClaims()).
			Return("", time.Time{}, services.ErrGeneratingJWTToken).Once()
		f.metrics.On("ObserveAttempt", svc.OperationLogin, svc.ResultError).Once()

		_, err := f.useCase.Login(context.Background(), "alice@example.com", "secret1")
		assert.ErrorIs(t, err, services.ErrTokenGenerationFailed)
		assert.ErrorIs(t, err, services.ErrGeneratingJWTToken)
	})
}

func TestCreateTokenPairNilUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.useCase.CreateTokenPair(context.Background(), nil, true)
	assert.ErrorIs(t, err, services.ErrNilIdentity)
}

func TestRefresh(t *testing.T) {
	accessExpiry := time.Date(2026, time.March, 1, 12, 15, 0, 0, time.UTC)
	pair := services.TokenPair{AccessToken: "expired-access", RefreshToken: "refresh-old"}
	principal := &services.Principal{Claims: aliceClaims()}

	storedUser := func() *entities.User {
		u := aliceUser()
		u.RefreshTokenHash = "hash-old"
		return u
	}

	t.Run("success - rotates against previous hash", func(t *testing.T) {
		f := newFixture(t)
		user := storedUser()

		f.tokens.On("RecoverPrincipal", mock.Anything, "expired-access").Return(principal, nil).Once()
		f.users.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		f.refresh.On("Validate", mock.Anything, user, "refresh-old").Return(nil).Once()
		f.tokens.On("GenerateAccessToken", mock.Anything, aliceClaims()).Return("access-2", accessExpiry, nil).Once()
		f.refresh.On("IssueAndStore", mock.Anything, mock.AnythingOfType("*entities.User"), true).
			Run(func(args mock.Arguments) { args.Get(1).(*entities.User).RefreshTokenHash = "hash-new" }).
			Return("refresh-new", nil).Once()
		f.users.On("RotateRefreshToken", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.RefreshTokenHash == "hash-new"
		}), "hash-old").Return(nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRefresh, svc.ResultSuccess).Once()

		result, err := f.useCase.Refresh(context.Background(), pair)
		require.NoError(t, err)
		assert.Equal(t, "access-2", result.AccessToken)
		assert.Equal(t, "refresh-new", result.RefreshToken)
		assert.Equal(t, "hash-new", user.RefreshTokenHash)
	})

	t.Run("malformed access token", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.On("RecoverPrincipal", mock.Anything, "expired-access").Return(nil, services.ErrInvalidTokenFormat).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRefresh, svc.ResultInvalidToken).Once()

		_, err := f.useCase.Refresh(context.Background(), pair)
		assert.ErrorIs(t, err, services.ErrInvalidTokenFormat)
	})

	t.Run("missing username claim", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.On("RecoverPrincipal", mock.Anything, "expired-access").
			Return(&services.Principal{Claims: services.Claims{Subject: "user-1"}}, nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRefresh, svc.ResultInvalidToken).Once()

		_, err := f.useCase.Refresh(context.Background(), pair)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("missing subject claim", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.On("RecoverPrincipal", mock.Anything, "expired-access").
			Return(&services.Principal{Claims: services.Claims{Username: "alice"}}, nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRefresh, svc.ResultInvalidToken).Once()

		_, err := f.useCase.Refresh(context.Background(), pair)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.On("RecoverPrincipal", mock.Anything, "expired-access").Return(principal, nil).Once()
		f.users.On("FindByUsername", mock.Anything, "alice").Return(nil, entities.ErrUserNotFound).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRefresh, svc.ResultUserNotFound).Once()

		_, err := f.useCase.Refresh(context.Background(), pair)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("subject belongs to another user", func(t *testing.T) {
		f := newFixture(t)
		other := storedUser()
		other.ID = "user-2"

		f.tokens.On("RecoverPrincipal", mock.Anything, "expired-access").Return(principal, nil).Once()
		f.users.On("FindByUsername", mock.Anything, "alice").Return(other, nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRefresh, svc.ResultInvalidToken).Once()

		_, err := f.useCase.Refresh(context.Background(), pair)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f := newFixture(t)
		user := storedUser()

		f.tokens.On("RecoverPrincipal", mock.Anything, "expired-access").Return(principal, nil).Once()
		f.users.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		f.refresh.On("Validate", mock.Anything, user, "refresh-old").Return(services.ErrRefreshTokenExpired).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRefresh, svc.ResultExpiredRefreshToken).Once()

		_, err := f.useCase.Refresh(context.Background(), pair)
		assert.ErrorIs(t, err, services.ErrRefreshTokenExpired)
	})

	t.Run("concurrent rotation loses", func(t *testing.T) {
		f := newFixture(t)
		user := storedUser()

		f.tokens.On("RecoverPrincipal", mock.Anything, "expired-access").Return(principal, nil).Once()
		f.users.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		f.refresh.On("Validate", mock.Anything, user, "refresh-old").Return(nil).Once()
		f.tokens.On("GenerateAccessToken", mock.Anything, aliceClaims()).Return("access-2", accessExpiry, nil).Once()
		f.refresh.On("IssueAndStore", mock.Anything, mock.AnythingOfType("*entities.User"), true).Return("refresh-new", nil).Once()
		f.users.On("RotateRefreshToken", mock.Anything, mock.Anything, "hash-old").Return(services.ErrInvalidRefreshToken).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRefresh, svc.ResultInvalidRefreshToken).Once()

		result, err := f.useCase.Refresh(context.Background(), pair)
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)
		assert.Nil(t, result)
		assert.Equal(t, "hash-old", user.RefreshTokenHash)
	})
}

func TestRegister(t *testing.T) {
	input := api.RegisterInput{
		FirstName: "Alice",
		LastName:  "Liddell",
		Username:  "alice",
		Email:     "Alice@Example.com",
		Password:  "secret1",
	}

	t.Run("success - role is always consumer", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, entities.ErrUserNotFound).Once()
		f.users.On("FindByUsername", mock.Anything, "alice").Return(nil, entities.ErrUserNotFound).Once()
		f.passwords.On("Hash", mock.Anything, "secret1").Return("bcrypt-hash", nil).Once()
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Role == entities.RoleConsumer &&
				u.PasswordHash == "bcrypt-hash" &&
				u.Email == "Alice@Example.com" &&
				u.FirstName == "Alice"
		})).Return(aliceUser(), nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRegister, svc.ResultSuccess).Once()

		user, err := f.useCase.Register(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("validation errors", func(t *testing.T) {
		cases := map[string]struct {
			mutate func(in *api.RegisterInput)
			want   error
		}{
			"bad email":      {mutate: func(in *api.RegisterInput) { in.Email = "not-an-email" }, want: entities.ErrInvalidEmail},
			"blank username": {mutate: func(in *api.RegisterInput) { in.Username = "  " }, want: entities.ErrEmptyUsername},
			"short password": {mutate: func(in *api.RegisterInput) { in.Password = "12345" }, want: entities.ErrPasswordTooShort},
		}

		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				f := newFixture(t)
				f.metrics.On("ObserveAttempt", svc.OperationRegister, svc.ResultValidation).Once()

				in := input
				tc.mutate(&in)

				_, err := f.useCase.Register(context.Background(), in)
				require.ErrorIs(t, err, tc.want)
				assert.True(t, app.IsValidationError(err))
			})
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(aliceUser(), nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRegister, svc.ResultConflict).Once()

		_, err := f.useCase.Register(context.Background(), input)
		assert.ErrorIs(t, err, services.ErrEmailAlreadyExists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, entities.ErrUserNotFound).Once()
		f.users.On("FindByUsername", mock.Anything, "alice").Return(aliceUser(), nil).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRegister, svc.ResultConflict).Once()

		_, err := f.useCase.Register(context.Background(), input)
		assert.ErrorIs(t, err, services.ErrUsernameAlreadyExists)
	})

	t.Run("duplicate detected by unique constraint", func(t *testing.T) {
		f := newFixture(t)

		f.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, entities.ErrUserNotFound).Once()
		f.users.On("FindByUsername", mock.Anything, "alice").Return(nil, entities.ErrUserNotFound).Once()
		f.passwords.On("Hash", mock.Anything, "secret1").Return("bcrypt-hash", nil).Once()
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrEmailAlreadyExists).Once()
		f.metrics.On("ObserveAttempt", svc.OperationRegister, svc.ResultConflict).Once()

		_, err := f.useCase.Register(context.Background(), input)
		assert.ErrorIs(t, err, services.ErrEmailAlreadyExists)
	})
}

func TestNewAuthUseCaseDefaults(t *testing.T) {
	users := new(mockUserRepository)
	users.On("FindByEmail", mock.MatchedBy(hasDeadline), "alice@example.com").Return(nil, entities.ErrUserNotFound).Once()

	useCase := app.NewAuthUseCase(users, new(mockPasswordService), new(mockTokenService), new(mockRefreshService), nil, 0)

	_, err := useCase.Login(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	users.AssertExpectations(t)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, app.IsAuthenticationError(services.ErrInvalidCredentials))
	assert.True(t, app.IsAuthenticationError(services.ErrRefreshTokenExpired))
	assert.True(t, app.IsAuthenticationError(entities.ErrUserNotFound))
	assert.False(t, app.IsAuthenticationError(errDatabase))
	assert.False(t, app.IsValidationError(services.ErrInvalidCredentials))
}
