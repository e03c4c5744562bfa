package services

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки, связанные с JWT токенами.
var (
	ErrInvalidJWTToken    = errors.New("invalid JWT token")
	ErrExpiredJWTToken    = errors.New("JWT token has expired")
	ErrGeneratingJWTToken = errors.New("failed to generate JWT token")
	ErrInvalidTokenFormat = errors.New("invalid token format")
)

// DefaultClockSkew - допуск расхождения часов при проверке времени токена.
const DefaultClockSkew = 5 * time.Minute

// SigningConfig содержит параметры подписи access токенов.
// Создается один раз при старте и дальше не меняется.
type SigningConfig struct {
	Secret         []byte `json:"-"`
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
	ClockSkew      time.Duration
}

// String не раскрывает секрет.
func (c SigningConfig) String() string {
	return fmt.Sprintf("SigningConfig{Issuer:%s Audience:%s AccessTokenTTL:%s ClockSkew:%s Secret:[REDACTED]}",
		c.Issuer, c.Audience, c.AccessTokenTTL, c.ClockSkew)
}

// GoString не раскрывает секрет в %#v.
func (c SigningConfig) GoString() string {
	return c.String()
}

// Principal - identity, восстановленная из access токена.
type Principal struct {
	Claims
	IssuedAt  time.Time
	ExpiresAt time.Time
}
