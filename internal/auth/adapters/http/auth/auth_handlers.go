// Package auth содержит HTTP обработчики регистрации, входа и обновления токенов.
package auth

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"streamnest/internal/auth/adapters/http/dto"
	"streamnest/internal/auth/adapters/http/respond"
	"streamnest/internal/auth/domain/services"
	"streamnest/internal/auth/ports/api"
	"streamnest/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister      = "auth handler: register"
	LogHandlerLogin         = "auth handler: login"
	LogHandlerRefreshTokens = "auth handler: refresh tokens" // #nosec G101 - not a credential

	ErrorInvalidRequest = "invalid request"
)

// Handler содержит HTTP обработчики для авторизации.
type Handler struct {
	authUseCase api.AuthUseCase
}

// NewHandler создает новый экземпляр обработчика авторизации.
func NewHandler(authUseCase api.AuthUseCase) *Handler {
	return &Handler{authUseCase: authUseCase}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return respond.BindError(ctx, err)
	}

	user, err := h.authUseCase.Register(requestCtx, api.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return respond.Error(ctx, err)
	}

	return respond.JSON(ctx, fiber.StatusCreated, user.Profile())
}

// Login обрабатывает запрос на вход пользователя.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return respond.BindError(ctx, err)
	}

	pair, err := h.authUseCase.Login(requestCtx, req.Email, req.Password)
	if err != nil {
		return respond.Error(ctx, err)
	}

	return respond.JSON(ctx, fiber.StatusOK, dto.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// RefreshTokens обменивает пару токенов на новую.
func (h *Handler) RefreshTokens(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerRefreshTokens)

	var req dto.TokenPair
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return respond.BindError(ctx, err)
	}

	pair, err := h.authUseCase.Refresh(requestCtx, services.TokenPair{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return respond.Error(ctx, err)
	}

	return respond.JSON(ctx, fiber.StatusOK, dto.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
