package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"streamnest/internal/auth/domain/services"
)

// JWTConfig содержит настройки токенов.
// Секрет читается только из JWT_SECRET и не имеет значения по умолчанию.
type JWTConfig struct {
	Secret          string        `env:"JWT_SECRET" json:"-"`
	Issuer          string        `env:"AUTH_JWT_ISSUER" env-default:"streamnest"`
	Audience        string        `env:"AUTH_JWT_AUDIENCE" env-default:"streamnest-clients"`
	ExpiresMinutes  string        `env:"AUTH_JWT_EXPIRES" env-default:"15"`
	RefreshTokenTTL time.Duration `env:"AUTH_JWT_REFRESH_TOKEN_TTL" env-default:"168h"`
	BCryptCost      int           `env:"AUTH_BCRYPT_COST" env-default:"10"`
}

// String не раскрывает секрет.
func (c JWTConfig) String() string {
	return fmt.Sprintf("JWTConfig{Issuer:%s Audience:%s Expires:%s RefreshTTL:%s Secret:[REDACTED]}",
		c.Issuer, c.Audience, c.ExpiresMinutes, c.RefreshTokenTTL)
}

// AccessTokenTTL разбирает время жизни access токена, заданное в минутах.
func (c *JWTConfig) AccessTokenTTL() (time.Duration, error) {
	minutes, err := strconv.ParseFloat(strings.TrimSpace(c.ExpiresMinutes), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: AUTH_JWT_EXPIRES %q is not a number", ErrConfiguration, c.ExpiresMinutes)
	}
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0, fmt.Errorf("%w: AUTH_JWT_EXPIRES must be positive", ErrConfiguration)
	}

	return time.Duration(minutes * float64(time.Minute)), nil
}

// SigningConfig собирает неизменяемые параметры подписи токенов.
func (c *JWTConfig) SigningConfig() (services.SigningConfig, error) {
	if c.Secret == "" {
		return services.SigningConfig{}, fmt.Errorf("%w: %s", ErrConfiguration, errMissingSecret)
	}
	if strings.TrimSpace(c.Issuer) == "" {
		return services.SigningConfig{}, fmt.Errorf("%w: %s", ErrConfiguration, errBadIssuer)
	}
	if strings.TrimSpace(c.Audience) == "" {
		return services.SigningConfig{}, fmt.Errorf("%w: %s", ErrConfiguration, errBadAudience)
	}
	if c.RefreshTokenTTL <= 0 {
		return services.SigningConfig{}, fmt.Errorf("%w: %s", ErrConfiguration, errBadRefreshTTL)
	}

	ttl, err := c.AccessTokenTTL()
	if err != nil {
		return services.SigningConfig{}, err
	}

	return services.SigningConfig{
		Secret:         []byte(c.Secret),
		Issuer:         c.Issuer,
		Audience:       c.Audience,
		AccessTokenTTL: ttl,
		ClockSkew:      services.DefaultClockSkew,
	}, nil
}
