// Package dto содержит объекты передачи данных HTTP API.
package dto

import "streamnest/internal/auth/domain/entities"

// RegisterRequest содержит данные для регистрации пользователя.
// Формат email и длина пароля дополнительно проверяются доменом.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Username  string `json:"username" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,max=254"`
	Password  string `json:"password" validate:"required,max=72"`
}

// LoginRequest содержит данные для входа пользователя.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair используется и как ответ на вход, и как запрос на обновление.
type TokenPair struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ProfileResponse содержит публичные данные пользователя.
type ProfileResponse = entities.Profile

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
