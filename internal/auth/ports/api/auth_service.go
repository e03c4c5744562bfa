// Package api определяет входящие порты сервиса аутентификации.
package api

import (
	"context"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
)

// RegisterInput - данные для регистрации пользователя.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*entities.User, error)

	Authenticate(ctx context.Context, email, password string) (*entities.User, error)

	CreateTokenPair(ctx context.Context, user *entities.User, populateExpiry bool) (*services.TokenPair, error)

	Login(ctx context.Context, email, password string) (*services.TokenPair, error)

	Refresh(ctx context.Context, pair services.TokenPair) (*services.TokenPair, error)
}
