// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"github.com/gofiber/fiber/v3"

	"streamnest/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// NewRequestIDMiddleware кладет идентификатор запроса в контекст и возвращает его клиенту.
// Отсутствующий или слишком длинный идентификатор заменяется новым.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		id := ctx.Get(HeaderRequestID)
		if len(id) > maxRequestIDLength {
			id = ""
		}

		requestCtx := logger.NewRequestIDContext(ctx.Context(), id)
		ctx.SetContext(requestCtx)

		id, _ = logger.GetRequestID(requestCtx)
		ctx.Set(HeaderRequestID, id)

		return ctx.Next()
	}
}
