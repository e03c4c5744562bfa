// Package services содержит доменные типы и ошибки жизненного цикла токенов.
package services

import (
	"errors"
	"time"

	"streamnest/internal/auth/domain/entities"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrEmailAlreadyExists    = errors.New("user with this email already exists")
	ErrUsernameAlreadyExists = errors.New("user with this username already exists")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrRefreshTokenExpired   = errors.New("refresh token has expired")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenGenerationFailed = errors.New("failed to generate authentication tokens")
	ErrNilIdentity           = errors.New("identity is required")
)

// TokenPair представляет пару токенов аутентификации.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Claims - утверждения об identity, которые несет access токен.
type Claims struct {
	Subject  string
	Username string
	Role     string
}

// BuildClaims строит утверждения для пользователя.
func BuildClaims(user *entities.User) (Claims, error) {
	if user == nil {
		return Claims{}, ErrNilIdentity
	}

	return Claims{
		Subject:  user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	}, nil
}
