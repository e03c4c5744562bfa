package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
	svc "streamnest/internal/auth/ports/services"
	"streamnest/pkg/logger"
)

// RefreshTokenBytes - число случайных байт в refresh токене.
const RefreshTokenBytes = 32

// DefaultRefreshTokenTTL - срок действия refresh токена по умолчанию.
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

const (
	methodIssueRefreshToken    = "IssueAndStore"
	methodValidateRefreshToken = "ValidateRefreshToken"
	msgRefreshTokenIssued      = "refresh token issued"
	msgRefreshTokenMismatch    = "refresh token does not match stored hash"
	msgRefreshTokenExpired     = "refresh token expired"
	errCtxGeneratingRefresh    = "generating refresh token"
)

// ServiceRefresh выпускает непрозрачные refresh токены и проверяет их по хэшу.
type ServiceRefresh struct {
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

// NewRefresh создает сервис refresh токенов. Пустой now означает time.Now.
func NewRefresh(ttl time.Duration, now func() time.Time) svc.RefreshTokenService {
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ServiceRefresh{ttl: ttl, now: now, random: rand.Reader}
}

// Generate возвращает 32 случайных байта из CSPRNG в base64.
func (s *ServiceRefresh) Generate(_ context.Context) (string, error) {
	buf := make([]byte, RefreshTokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("%s: %w: %w", errCtxGeneratingRefresh, services.ErrTokenGenerationFailed, err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Hash возвращает SHA-256 от токена в base64.
func (s *ServiceRefresh) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// IssueAndStore генерирует токен и записывает его хэш в user.
// При populateExpiry срок действия становится now+ttl, иначе остается прежним.
func (s *ServiceRefresh) IssueAndStore(ctx context.Context, user *entities.User, populateExpiry bool) (string, error) {
	if user == nil {
		return "", services.ErrNilIdentity
	}

	token, err := s.Generate(ctx)
	if err != nil {
		return "", err
	}

	user.RefreshTokenHash = s.Hash(token)
	if populateExpiry {
		expiry := s.now().Add(s.ttl)
		user.RefreshTokenExpiry = &expiry
	}

	logger.Log(ctx).Debug(ctx, msgRefreshTokenIssued,
		zap.String("method", methodIssueRefreshToken),
		zap.String("userID", user.ID))

	return token, nil
}

// Validate проверяет токен по сохраненному хэшу и сроку действия.
// Отсутствующий срок действия считается истекшим.
func (s *ServiceRefresh) Validate(ctx context.Context, user *entities.User, token string) error {
	if user == nil {
		return services.ErrNilIdentity
	}

	log := logger.Log(ctx).With(
		zap.String("method", methodValidateRefreshToken),
		zap.String("username", user.Username),
	)

	supplied := s.Hash(token)
	if user.RefreshTokenHash == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(user.RefreshTokenHash)) != 1 {
		log.Warn(ctx, msgRefreshTokenMismatch)
		return services.ErrInvalidRefreshToken
	}

	if user.RefreshTokenExpiry == nil || !user.RefreshTokenExpiry.After(s.now()) {
		log.Warn(ctx, msgRefreshTokenExpired)
		return services.ErrRefreshTokenExpired
	}

	return nil
}
