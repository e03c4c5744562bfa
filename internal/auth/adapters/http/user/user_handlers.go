// Package user содержит HTTP обработчики профиля пользователя.
package user

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"streamnest/internal/auth/adapters/http/dto"
	"streamnest/internal/auth/adapters/http/middleware"
	"streamnest/internal/auth/adapters/http/respond"
	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/ports/api"
	"streamnest/pkg/logger"
)

const (
	LogHandlerGetProfile     = "user handler: get profile"
	LogHandlerGetProfileByID = "user handler: get profile by id"
)

// MsgUserNotFound - ответ на запрос профиля несуществующего пользователя.
const MsgUserNotFound = "user not found"

// Handler отдает профиль владельца access токена.
type Handler struct {
	userUseCase api.UserUseCase
}

// NewHandler создает обработчик профиля.
func NewHandler(userUseCase api.UserUseCase) *Handler {
	return &Handler{userUseCase: userUseCase}
}

// GetProfile возвращает профиль пользователя из токена. Требует NewAuthMiddleware.
func (h *Handler) GetProfile(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerGetProfile)

	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return respond.Unauthorized(ctx)
	}

	profile, err := h.userUseCase.GetUserProfile(requestCtx, principal.Subject)
	if err != nil {
		return respond.Error(ctx, err)
	}

	return respond.JSON(ctx, fiber.StatusOK, profile)
}

// GetProfileByID возвращает профиль пользователя по идентификатору из пути.
// Доступен любому владельцу действующего access токена.
func (h *Handler) GetProfileByID(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerGetProfileByID)

	profile, err := h.userUseCase.GetUserProfile(requestCtx, ctx.Params("id"))
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return respond.JSON(ctx, fiber.StatusNotFound, dto.ErrorResponse{Error: MsgUserNotFound})
		}
		return respond.Error(ctx, err)
	}

	return respond.JSON(ctx, fiber.StatusOK, profile)
}
