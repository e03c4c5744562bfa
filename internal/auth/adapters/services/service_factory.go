// Package services содержит реализации криптографических сервисов аутентификации:
// bcrypt для паролей, HS256 JWT для access токенов и хэшируемые refresh токены.
package services

import (
	"time"

	"streamnest/internal/auth/domain/services"
	svc "streamnest/internal/auth/ports/services"
)

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService svc.PasswordService
	tokenService    svc.TokenService
	refreshService  svc.RefreshTokenService
}

// NewServiceFactory создает сервисы с общими часами now.
func NewServiceFactory(
	signing services.SigningConfig,
	refreshTokenTTL time.Duration,
	bcryptCost int,
	now func() time.Time,
) *ServiceFactory {
	return &ServiceFactory{
		passwordService: NewBcrypt(bcryptCost),
		tokenService:    NewJWT(signing, now),
		refreshService:  NewRefresh(refreshTokenTTL, now),
	}
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() svc.PasswordService {
	return f.passwordService
}

// TokenService возвращает сервис access токенов.
func (f *ServiceFactory) TokenService() svc.TokenService {
	return f.tokenService
}

// RefreshService возвращает сервис refresh токенов.
func (f *ServiceFactory) RefreshService() svc.RefreshTokenService {
	return f.refreshService
}
