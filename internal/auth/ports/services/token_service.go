package services

import (
	"context"
	"time"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
)

// TokenService выпускает и проверяет access токены.
type TokenService interface {
	GenerateAccessToken(ctx context.Context, claims services.Claims) (string, time.Time, error)

	// RecoverPrincipal проверяет подпись, issuer и audience, но не срок действия.
	RecoverPrincipal(ctx context.Context, token string) (*services.Principal, error)

	ValidateAccessToken(ctx context.Context, token string) (*services.Principal, error)
}

// RefreshTokenService управляет refresh токенами.
type RefreshTokenService interface {
	Generate(ctx context.Context) (string, error)

	Hash(token string) string

	// IssueAndStore записывает хэш нового токена в user и возвращает сам токен.
	// Сохранение пользователя остается за вызывающим.
	IssueAndStore(ctx context.Context, user *entities.User, populateExpiry bool) (string, error)

	Validate(ctx context.Context, user *entities.User, token string) error
}
