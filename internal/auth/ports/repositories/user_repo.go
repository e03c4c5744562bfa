// Package repositories определяет исходящие порты хранения.
package repositories

import (
	"context"

	"streamnest/internal/auth/domain/entities"
)

// UserRepository определяет операции хранения пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	// FindByEmail ищет пользователя без учета регистра email.
	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	FindByUsername(ctx context.Context, username string) (*entities.User, error)

	// StoreRefreshToken сохраняет хэш и срок действия refresh токена пользователя.
	StoreRefreshToken(ctx context.Context, user *entities.User) error

	// RotateRefreshToken заменяет хэш, только если сохраненный хэш все еще равен previousHash.
	RotateRefreshToken(ctx context.Context, user *entities.User, previousHash string) error
}
