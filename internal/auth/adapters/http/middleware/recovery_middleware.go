package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"streamnest/internal/auth/adapters/http/dto"
	"streamnest/internal/auth/adapters/http/respond"
	"streamnest/pkg/logger"
)

const (
	LogServerPanic       = "server panic"
	LogPanicResponseFail = "failed to send error response after panic"
)

// NewRecoveryMiddleware создает новое промежуточное ПО для восстановления после паники.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx)

		defer func() {
			if r := recover(); r != nil {
				log.Error(requestCtx, LogServerPanic,
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)

				if err := respond.JSON(ctx, fiber.StatusInternalServerError, dto.ErrorResponse{
					Error: respond.MsgInternal,
				}); err != nil {
					log.Error(requestCtx, LogPanicResponseFail, zap.Error(err))
				}
			}
		}()

		return ctx.Next()
	}
}
