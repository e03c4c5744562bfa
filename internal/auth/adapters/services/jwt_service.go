package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"streamnest/internal/auth/domain/services"
	svc "streamnest/internal/auth/ports/services"
	"streamnest/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodGenerateAccessToken = "GenerateAccessToken"
	methodRecoverPrincipal    = "RecoverPrincipal"
	methodValidateAccessToken = "ValidateAccessToken"
	msgGeneratingAccessToken  = "generating access token"
	msgTokenGenerated         = "token generated successfully"
	msgPrincipalRecovered     = "principal recovered from token"
	msgTokenValidated         = "token validated successfully"
	msgTokenRejected          = "token rejected"
	msgTokenExpired           = "token has expired"
	//nolint:gosec
	errSigningToken       = "error signing token"
	errCtxGeneratingToken = "generating token"
	errCtxRecovering      = "recovering principal"
	errCtxValidatingToken = "validating token"

	signingAlgorithm = "HS256"
)

// Ошибки проверки полей токена.
var (
	ErrInvalidAlgorithm = errors.New("invalid signing algorithm")
	errIssuerMismatch   = errors.New("issuer mismatch")
	errAudienceMismatch = errors.New("audience mismatch")
	errNotYetValid      = errors.New("token used before valid")
	errIssuedInFuture   = errors.New("token issued in the future")
)

// accessClaims - представление утверждений в теле JWT.
type accessClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ServiceJWT выпускает и проверяет access токены HS256.
type ServiceJWT struct {
	config          services.SigningConfig
	now             func() time.Time
	recoverParser   *jwt.Parser
	validatorParser *jwt.Parser
}

// NewJWT создает сервис токенов. Пустой now означает time.Now.
func NewJWT(cfg services.SigningConfig, now func() time.Time) svc.TokenService {
	if now == nil {
		now = time.Now
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = services.DefaultClockSkew
	}

	methods := jwt.WithValidMethods([]string{signingAlgorithm})

	return &ServiceJWT{
		config: cfg,
		now:    now,
		// Срок действия не проверяется, остальные поля проверяет checkRecoveredClaims.
		recoverParser: jwt.NewParser(methods, jwt.WithoutClaimsValidation()),
		validatorParser: jwt.NewParser(
			methods,
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithLeeway(cfg.ClockSkew),
			jwt.WithTimeFunc(now),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// GenerateAccessToken подписывает access токен для claims.
// Токен действует в интервале [now, now+AccessTokenTTL).
func (s *ServiceJWT) GenerateAccessToken(ctx context.Context, claims services.Claims) (string, time.Time, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodGenerateAccessToken),
		zap.String("userID", claims.Subject),
	)
	log.Debug(ctx, msgGeneratingAccessToken)

	if len(s.config.Secret) == 0 {
		log.Error(ctx, "empty secret key provided")
		return "", time.Time{}, fmt.Errorf("%s: %w: empty secret key", errCtxGeneratingToken, services.ErrGeneratingJWTToken)
	}

	now := s.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Name: claims.Username,
		Role: claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   claims.Subject,
			Audience:  jwt.ClaimStrings{s.config.Audience},
			ExpiresAt: expiresAt,
			NotBefore: issuedAt,
			IssuedAt:  issuedAt,
		},
	})

	tokenString, err := token.SignedString(s.config.Secret)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxGeneratingToken, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenGenerated, zap.Time("expiresAt", expiresAt.Time))
	return tokenString, expiresAt.Time.UTC(), nil
}

// RecoverPrincipal восстанавливает identity из токена, срок которого мог истечь.
// Проверяются структура, алгоритм, подпись, issuer и audience; nbf и iat с допуском ClockSkew.
func (s *ServiceJWT) RecoverPrincipal(ctx context.Context, tokenString string) (*services.Principal, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRecoverPrincipal))

	claims := &accessClaims{}
	if _, err := s.recoverParser.ParseWithClaims(tokenString, claims, s.keyFunc); err != nil {
		log.Warn(ctx, msgTokenRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxRecovering, services.ErrInvalidTokenFormat)
	}

	if err := s.checkRecoveredClaims(claims); err != nil {
		log.Warn(ctx, msgTokenRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxRecovering, services.ErrInvalidTokenFormat, err)
	}

	log.Debug(ctx, msgPrincipalRecovered, zap.String("userID", claims.Subject))
	return toPrincipal(claims), nil
}

// ValidateAccessToken полностью проверяет токен, включая срок действия.
func (s *ServiceJWT) ValidateAccessToken(ctx context.Context, tokenString string) (*services.Principal, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidateAccessToken))

	claims := &accessClaims{}
	if _, err := s.validatorParser.ParseWithClaims(tokenString, claims, s.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrExpiredJWTToken)
		}
		log.Debug(ctx, msgTokenRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxValidatingToken, services.ErrInvalidJWTToken, err)
	}

	if claims.Subject == "" {
		log.Debug(ctx, "sub claim is empty")
		return nil, fmt.Errorf("%s: %w: empty subject", errCtxValidatingToken, services.ErrInvalidJWTToken)
	}

	log.Debug(ctx, msgTokenValidated, zap.String("userID", claims.Subject))
	return toPrincipal(claims), nil
}

func (s *ServiceJWT) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
	}
	return s.config.Secret, nil
}

func (s *ServiceJWT) checkRecoveredClaims(claims *accessClaims) error {
	if claims.Issuer != s.config.Issuer {
		return errIssuerMismatch
	}
	if !slices.Contains(claims.Audience, s.config.Audience) {
		return errAudienceMismatch
	}

	horizon := s.now().Add(s.config.ClockSkew)
	if claims.NotBefore != nil && horizon.Before(claims.NotBefore.Time) {
		return errNotYetValid
	}
	if claims.IssuedAt != nil && horizon.Before(claims.IssuedAt.Time) {
		return errIssuedInFuture
	}

	return nil
}

func toPrincipal(claims *accessClaims) *services.Principal {
	principal := &services.Principal{
		Claims: services.Claims{
			Subject:  claims.Subject,
			Username: claims.Name,
			Role:     claims.Role,
		},
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return principal
}
