package repositories

import (
	"context"

	"streamnest/internal/auth/domain/entities"
)

// ProfileCache кеширует публичные профили пользователей.
// Get возвращает (nil, nil), если профиля нет в кеше.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*entities.Profile, error)

	Set(ctx context.Context, profile *entities.Profile) error
}
