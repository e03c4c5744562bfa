package api

import (
	"context"

	"streamnest/internal/auth/domain/entities"
)

// UserUseCase определяет порт для пользовательских операций.
type UserUseCase interface {
	GetUserProfile(ctx context.Context, userID string) (*entities.Profile, error)
}
