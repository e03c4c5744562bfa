package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"streamnest/internal/auth/adapters/http/respond"
	"streamnest/internal/auth/domain/services"
	svc "streamnest/internal/auth/ports/services"
	"streamnest/pkg/logger"
)

const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorTokenRejected      = "access token rejected"

	bearerPrefix = "Bearer "
	principalKey = "principal"
)

// NewAuthMiddleware проверяет Bearer токен и кладет Principal в Locals.
// Любой отказ отдается клиенту как 401 с одинаковым телом.
func NewAuthMiddleware(tokens svc.TokenService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return respond.Unauthorized(ctx)
		}

		if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return respond.Unauthorized(ctx)
		}

		principal, err := tokens.ValidateAccessToken(requestCtx, strings.TrimSpace(authHeader[len(bearerPrefix):]))
		if err != nil {
			log.Info(requestCtx, ErrorTokenRejected, zap.Error(err))
			return respond.Unauthorized(ctx)
		}

		fiber.Locals[*services.Principal](ctx, principalKey, principal)
		return ctx.Next()
	}
}

// PrincipalFrom возвращает Principal, сохраненный NewAuthMiddleware.
func PrincipalFrom(ctx fiber.Ctx) (*services.Principal, bool) {
	principal := fiber.Locals[*services.Principal](ctx, principalKey)
	return principal, principal != nil
}
