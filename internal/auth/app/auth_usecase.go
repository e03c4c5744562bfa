// Package app содержит сценарии сервиса аутентификации.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
	"streamnest/internal/auth/ports/api"
	"streamnest/internal/auth/ports/repositories"
	svc "streamnest/internal/auth/ports/services"
	"streamnest/pkg/logger"
)

// DefaultRequestTimeout ограничивает время одного сценария, включая обращения к базе.
const DefaultRequestTimeout = 5 * time.Second

// decoyPassword хэшируется один раз; с этим хэшем сравнивается пароль для неизвестного email.
const decoyPassword = "streamnest-decoy-password"

const (
	methodRegister        = "Register"
	methodAuthenticate    = "Authenticate"
	methodCreateTokenPair = "CreateTokenPair"
	methodLogin           = "Login"
	methodRefresh         = "Refresh"

	msgStartRegistration    = "starting user registration"
	msgInvalidRegistration  = "registration input rejected"
	msgEmailExists          = "user with this email already exists"
	msgUsernameExists       = "user with this username already exists"
	msgUserRegistered       = "user registered successfully"
	msgLoginAttempt         = "login attempt"
	msgLoginNonExistent     = "login attempt with non-existent email"
	msgInvalidPasswordAuth  = "invalid password provided"
	msgUserAuthenticated    = "user authenticated"
	msgTokenPairGenerated   = "token pair generated successfully"
	msgRefreshingTokens     = "refreshing tokens"
	msgRefreshMissingClaims = "token has no subject or username"
	msgRefreshSubjectDiffer = "token subject does not match stored user"
	msgRefreshUnknownUser   = "refresh requested for unknown user"
	msgTokensRefreshed      = "tokens refreshed successfully"

	msgErrCheckExistingUser   = "failed to check existing user"
	msgErrHashPassword        = "failed to hash password"
	msgErrCreateUser          = "failed to create user"
	msgErrFindingUser         = "error finding user"
	msgErrVerifyingPassword   = "error verifying password"
	msgErrGenerateAccessToken = "failed to generate access token"
	msgErrIssueRefreshToken   = "failed to issue refresh token"
	msgErrStoreRefreshToken   = "failed to store refresh token"
	msgErrDecoyHash           = "failed to prepare decoy password hash"

	errCtxValidatingInput        = "validating registration"
	errCtxCheckingUser           = "checking existing user"
	errCtxEmailRegistered        = "email already registered"
	errCtxUsernameRegistered     = "username already registered"
	errCtxHashingPassword        = "hashing password"
	errCtxCreatingUser           = "creating user"
	errCtxInvalidCredentials     = "invalid credentials"
	errCtxFindingUser            = "finding user"
	errCtxVerifyingPassword      = "verifying password"
	errCtxBuildingClaims         = "building claims"
	errCtxGeneratingAccessToken  = "generating access token"
	errCtxGeneratingRefreshToken = "generating refresh token"
	errCtxStoringRefreshToken    = "storing refresh token"
	errCtxRecoveringPrincipal    = "recovering principal"
	errCtxValidatingRefresh      = "validating refresh token"
)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
// Состояние между вызовами не хранится: пользователь передается явно.
type AuthUseCaseImpl struct {
	userRepo       repositories.UserRepository
	passwordSvc    svc.PasswordService
	tokenSvc       svc.TokenService
	refreshSvc     svc.RefreshTokenService
	metrics        svc.AuthMetrics
	requestTimeout time.Duration

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
// Пустые metrics отключают учет, нулевой requestTimeout заменяется DefaultRequestTimeout.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
	refreshSvc svc.RefreshTokenService,
	metrics svc.AuthMetrics,
	requestTimeout time.Duration,
) api.AuthUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &AuthUseCaseImpl{
		userRepo:       userRepo,
		passwordSvc:    passwordSvc,
		tokenSvc:       tokenSvc,
		refreshSvc:     refreshSvc,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}
}

// Register создает пользователя с ролью Consumer.
func (a *AuthUseCaseImpl) Register(ctx context.Context, input api.RegisterInput) (user *entities.User, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()
	defer func() { a.metrics.ObserveAttempt(svc.OperationRegister, resultOf(err)) }()

	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)

	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("username", username))
	log.Debug(ctx, msgStartRegistration)

	if err := validateRegistration(email, username, input.Password); err != nil {
		log.Debug(ctx, msgInvalidRegistration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingInput, err)
	}

	if err := a.ensureUnique(ctx, log, email, username); err != nil {
		return nil, err
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, input.Password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	created, err := a.userRepo.Create(ctx, &entities.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hashedPassword,
		Role:         entities.RoleConsumer,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) || errors.Is(err, services.ErrUsernameAlreadyExists) {
			log.Debug(ctx, msgErrCreateUser, zap.Error(err))
		} else {
			log.Error(ctx, msgErrCreateUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.String("userID", created.ID))
	return created, nil
}

func (a *AuthUseCaseImpl) ensureUnique(ctx context.Context, log *logger.Logger, email, username string) error {
	existing, err := a.userRepo.FindByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existing != nil {
		log.Debug(ctx, msgEmailExists)
		return fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	existing, err = a.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existing != nil {
		log.Debug(ctx, msgUsernameExists)
		return fmt.Errorf("%s: %w", errCtxUsernameRegistered, services.ErrUsernameAlreadyExists)
	}

	return nil
}

// Authenticate проверяет email и пароль.
// Неизвестный email и неверный пароль неразличимы для вызывающего: оба дают ErrInvalidCredentials.
func (a *AuthUseCaseImpl) Authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()

	log := logger.Log(ctx).With(zap.String("method", methodAuthenticate))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.userRepo.FindByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Info(ctx, msgLoginNonExistent)
			a.verifyDecoy(ctx, log, password)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	log = log.With(zap.String("userID", user.ID), zap.String("username", user.Username))

	valid, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPassword) {
			log.Info(ctx, msgInvalidPasswordAuth)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Info(ctx, msgInvalidPasswordAuth)
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	log.Debug(ctx, msgUserAuthenticated)
	return user, nil
}

// verifyDecoy выполняет сравнение bcrypt для неизвестного email,
// чтобы время ответа не зависело от существования пользователя.
func (a *AuthUseCaseImpl) verifyDecoy(ctx context.Context, log *logger.Logger, password string) {
	a.decoyOnce.Do(func() {
		hash, err := a.passwordSvc.Hash(ctx, decoyPassword)
		if err != nil {
			log.Error(ctx, msgErrDecoyHash, zap.Error(err))
			return
		}
		a.decoyHash = hash
	})
	if a.decoyHash == "" {
		return
	}
	_, _ = a.passwordSvc.Verify(ctx, password, a.decoyHash)
}

// CreateTokenPair выпускает access и refresh токены для user и сохраняет хэш refresh токена.
// Токены возвращаются только после успешной записи.
func (a *AuthUseCaseImpl) CreateTokenPair(ctx context.Context, user *entities.User, populateExpiry bool) (*services.TokenPair, error) {
	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()

	return a.issueTokenPair(ctx, user, populateExpiry, func(ctx context.Context, updated *entities.User) error {
		return a.userRepo.StoreRefreshToken(ctx, updated)
	})
}

// Login проверяет учетные данные и выпускает пару токенов с новым сроком действия refresh токена.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string) (pair *services.TokenPair, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()
	defer func() { a.metrics.ObserveAttempt(svc.OperationLogin, resultOf(err)) }()

	user, err := a.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return a.CreateTokenPair(ctx, user, true)
}

// Refresh обменивает просроченный access токен и действующий refresh токен на новую пару.
// Старый refresh токен перестает действовать; повторное использование дает ErrInvalidRefreshToken.
func (a *AuthUseCaseImpl) Refresh(ctx context.Context, pair services.TokenPair) (result *services.TokenPair, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()
	defer func() { a.metrics.ObserveAttempt(svc.OperationRefresh, resultOf(err)) }()

	log := logger.Log(ctx).With(zap.String("method", methodRefresh))
	log.Debug(ctx, msgRefreshingTokens)

	principal, err := a.tokenSvc.RecoverPrincipal(ctx, pair.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxRecoveringPrincipal, err)
	}

	if principal.Subject == "" || principal.Username == "" {
		log.Warn(ctx, msgRefreshMissingClaims)
		return nil, fmt.Errorf("%s: %w", errCtxRecoveringPrincipal, services.ErrInvalidToken)
	}

	log = log.With(zap.String("username", principal.Username))

	user, err := a.userRepo.FindByUsername(ctx, principal.Username)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Warn(ctx, msgRefreshUnknownUser)
			return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	if user.ID != principal.Subject {
		log.Warn(ctx, msgRefreshSubjectDiffer)
		return nil, fmt.Errorf("%s: %w", errCtxRecoveringPrincipal, services.ErrInvalidToken)
	}

	if err := a.refreshSvc.Validate(ctx, user, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingRefresh, err)
	}

	previousHash := user.RefreshTokenHash
	result, err = a.issueTokenPair(ctx, user, true, func(ctx context.Context, updated *entities.User) error {
		return a.userRepo.RotateRefreshToken(ctx, updated, previousHash)
	})
	if err != nil {
		return nil, err
	}

	log.Info(ctx, msgTokensRefreshed, zap.String("userID", user.ID))
	return result, nil
}

// issueTokenPair строит токены на копии user, сохраняет ее через persist
// и только после этого переносит новые поля refresh токена в user.
func (a *AuthUseCaseImpl) issueTokenPair(
	ctx context.Context,
	user *entities.User,
	populateExpiry bool,
	persist func(ctx context.Context, updated *entities.User) error,
) (*services.TokenPair, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateTokenPair))

	claims, err := services.BuildClaims(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxBuildingClaims, err)
	}
	log = log.With(zap.String("userID", user.ID))

	accessToken, expiresAt, err := a.tokenSvc.GenerateAccessToken(ctx, claims)
	if err != nil {
		log.Error(ctx, msgErrGenerateAccessToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxGeneratingAccessToken, services.ErrTokenGenerationFailed, err)
	}

	updated := *user
	refreshToken, err := a.refreshSvc.IssueAndStore(ctx, &updated, populateExpiry)
	if err != nil {
		log.Error(ctx, msgErrIssueRefreshToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxGeneratingRefreshToken, services.ErrTokenGenerationFailed, err)
	}

	if err := persist(ctx, &updated); err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			return nil, fmt.Errorf("%s: %w", errCtxStoringRefreshToken, err)
		}
		log.Error(ctx, msgErrStoreRefreshToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxStoringRefreshToken, err)
	}

	user.RefreshTokenHash = updated.RefreshTokenHash
	user.RefreshTokenExpiry = updated.RefreshTokenExpiry

	log.Debug(ctx, msgTokenPairGenerated, zap.Time("expiresAt", expiresAt))
	return &services.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func validateRegistration(email, username, password string) error {
	if err := entities.ValidateEmail(email); err != nil {
		return err
	}
	if err := entities.ValidateUsername(username); err != nil {
		return err
	}
	return entities.ValidatePassword(password)
}
