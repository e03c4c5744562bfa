package app

import (
	"errors"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
	svc "streamnest/internal/auth/ports/services"
)

type nopMetrics struct{}

func (nopMetrics) ObserveAttempt(string, string) {}

// resultOf сводит ошибку сценария к метке исхода.
func resultOf(err error) string {
	switch {
	case err == nil:
		return svc.ResultSuccess
	case errors.Is(err, services.ErrInvalidCredentials):
		return svc.ResultInvalidCredentials
	case errors.Is(err, services.ErrInvalidRefreshToken):
		return svc.ResultInvalidRefreshToken
	case errors.Is(err, services.ErrRefreshTokenExpired):
		return svc.ResultExpiredRefreshToken
	case errors.Is(err, services.ErrInvalidTokenFormat), errors.Is(err, services.ErrInvalidToken):
		return svc.ResultInvalidToken
	case errors.Is(err, entities.ErrUserNotFound):
		return svc.ResultUserNotFound
	case errors.Is(err, services.ErrEmailAlreadyExists), errors.Is(err, services.ErrUsernameAlreadyExists):
		return svc.ResultConflict
	case IsValidationError(err):
		return svc.ResultValidation
	default:
		return svc.ResultError
	}
}

// IsValidationError сообщает, что ошибка вызвана некорректными входными данными.
func IsValidationError(err error) bool {
	return errors.Is(err, entities.ErrInvalidEmail) ||
		errors.Is(err, entities.ErrEmptyUsername) ||
		errors.Is(err, entities.ErrPasswordTooShort) ||
		errors.Is(err, services.ErrInvalidPassword)
}

// IsAuthenticationError сообщает, что ошибка должна выглядеть для клиента как отказ в аутентификации.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, services.ErrInvalidCredentials) ||
		errors.Is(err, services.ErrInvalidRefreshToken) ||
		errors.Is(err, services.ErrRefreshTokenExpired) ||
		errors.Is(err, services.ErrInvalidTokenFormat) ||
		errors.Is(err, services.ErrInvalidToken) ||
		errors.Is(err, services.ErrInvalidJWTToken) ||
		errors.Is(err, services.ErrExpiredJWTToken) ||
		errors.Is(err, entities.ErrUserNotFound)
}
