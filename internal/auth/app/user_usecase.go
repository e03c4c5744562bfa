package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/ports/api"
	"streamnest/internal/auth/ports/repositories"
	"streamnest/pkg/logger"
)

// ErrEmptyUserID возвращается для запроса профиля без идентификатора.
var ErrEmptyUserID = errors.New("user ID cannot be empty")

const (
	methodGetUserProfile = "GetUserProfile"

	msgRequestingProfile   = "requesting user profile"
	msgEmptyUserIDProvided = "empty user ID provided"
	msgProfileFromCache    = "user profile served from cache"
	msgProfileRetrieved    = "user profile successfully retrieved"

	msgErrFindingUserByID = "failed to find user by ID"
	msgErrCacheRead       = "failed to read profile cache"
	msgErrCacheWrite      = "failed to write profile cache"

	errCtxValidatingUserID = "validating user ID"
	errCtxFetchingProfile  = "fetching user profile"
)

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct {
	userRepo repositories.UserRepository
	cache    repositories.ProfileCache
}

// NewUserUseCase создает сервис профилей. cache может быть nil.
func NewUserUseCase(userRepo repositories.UserRepository, cache repositories.ProfileCache) api.UserUseCase {
	return &UserUseCaseImpl{
		userRepo: userRepo,
		cache:    cache,
	}
}

// GetUserProfile возвращает профиль пользователя, сначала из кеша, затем из базы.
// Ошибки кеша не прерывают запрос.
func (u *UserUseCaseImpl) GetUserProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetUserProfile), zap.String("userID", userID))
	log.Debug(ctx, msgRequestingProfile)

	if userID == "" {
		log.Debug(ctx, msgEmptyUserIDProvided)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUserID, ErrEmptyUserID)
	}

	if u.cache != nil {
		cached, err := u.cache.Get(ctx, userID)
		switch {
		case err != nil:
			log.Warn(ctx, msgErrCacheRead, zap.Error(err))
		case cached != nil:
			log.Debug(ctx, msgProfileFromCache)
			return cached, nil
		}
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgErrFindingUserByID, zap.Error(err))
		} else {
			log.Error(ctx, msgErrFindingUserByID, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	profile := user.Profile()

	if u.cache != nil {
		if err := u.cache.Set(ctx, &profile); err != nil {
			log.Warn(ctx, msgErrCacheWrite, zap.Error(err))
		}
	}

	log.Info(ctx, msgProfileRetrieved)
	return &profile, nil
}
