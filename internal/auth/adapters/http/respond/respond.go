// Package respond переводит ошибки сценариев в HTTP ответы.
package respond

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"streamnest/internal/auth/adapters/http/dto"
	"streamnest/internal/auth/app"
	"streamnest/internal/auth/domain/services"
	"streamnest/pkg/logger"
)

// Тексты ошибок, которые видит клиент.
const (
	MsgUnauthorized   = "unauthorized"
	MsgInvalidRequest = "invalid request"
	MsgUserExists     = "user already exists"
	MsgInternal       = "internal server error"
)

// JSON отправляет value со статусом status.
func JSON(c fiber.Ctx, status int, value any) error {
	return c.Status(status).JSON(value)
}

// Unauthorized отправляет единый ответ для всех отказов в аутентификации.
func Unauthorized(c fiber.Ctx) error {
	return JSON(c, fiber.StatusUnauthorized, dto.ErrorResponse{Error: MsgUnauthorized})
}

// BindError отвечает 400 на нечитаемое или невалидное тело запроса.
func BindError(c fiber.Ctx, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		return JSON(c, fiber.StatusBadRequest, dto.ErrorResponse{Error: MsgInvalidRequest, Fields: fields})
	}
	return JSON(c, fiber.StatusBadRequest, dto.ErrorResponse{Error: MsgInvalidRequest})
}

// Error выбирает статус по ошибке сценария. Детали внутренних ошибок клиенту не передаются.
func Error(c fiber.Ctx, err error) error {
	ctx := c.Context()

	switch {
	case app.IsAuthenticationError(err), errors.Is(err, app.ErrEmptyUserID):
		return Unauthorized(c)
	case errors.Is(err, services.ErrEmailAlreadyExists), errors.Is(err, services.ErrUsernameAlreadyExists):
		return JSON(c, fiber.StatusConflict, dto.ErrorResponse{Error: MsgUserExists})
	case app.IsValidationError(err):
		return JSON(c, fiber.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
	default:
		logger.Log(ctx).Error(ctx, MsgInternal, zap.Error(err))
		return JSON(c, fiber.StatusInternalServerError, dto.ErrorResponse{Error: MsgInternal})
	}
}

// ErrorHandler обрабатывает ошибки, которые обработчики вернули fiber.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return JSON(c, fiberErr.Code, dto.ErrorResponse{Error: fiberErr.Message})
	}

	ctx := c.Context()
	logger.Log(ctx).Error(ctx, MsgInternal, zap.Error(err))
	return JSON(c, fiber.StatusInternalServerError, dto.ErrorResponse{Error: MsgInternal})
}

func validationMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if errors.Unwrap(e) == nil {
			return e.Error()
		}
	}
	return MsgInvalidRequest
}
