// Package http содержит HTTP сервер сервиса аутентификации.
package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"streamnest/internal/auth/adapters/http/auth"
	"streamnest/internal/auth/adapters/http/dto"
	"streamnest/internal/auth/adapters/http/middleware"
	"streamnest/internal/auth/adapters/http/respond"
	"streamnest/internal/auth/adapters/http/user"
	"streamnest/internal/auth/config"
	"streamnest/internal/auth/ports/api"
	svc "streamnest/internal/auth/ports/services"
)

// Маршруты API.
const (
	RouteRegister = "/api/authentication/register"
	RouteLogin    = "/api/authentication/login"
	RouteRefresh  = "/api/token/refresh" // #nosec G101 - not a credential
	RouteUsers    = "/api/user"
	RouteProfile  = RouteUsers + "/profile"
	RouteMetrics  = "/metrics"
)

// Deps - зависимости обработчиков.
type Deps struct {
	AuthUseCase    api.AuthUseCase
	UserUseCase    api.UserUseCase
	TokenService   svc.TokenService
	MetricsHandler nethttp.Handler
}

// NewApp создает fiber приложение с валидатором тел запросов и единым обработчиком ошибок.
func NewApp(cfg *config.HTTPConfig) *fiber.App {
	return fiber.New(fiber.Config{
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		BodyLimit:       cfg.BodyLimit,
		StructValidator: NewStructValidator(),
		ErrorHandler:    respond.ErrorHandler,
	})
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Deps) {
	authHandler := auth.NewHandler(deps.AuthUseCase)
	userHandler := user.NewHandler(deps.UserUseCase)

	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())

	if deps.MetricsHandler != nil {
		app.Get(RouteMetrics, adaptor.HTTPHandler(deps.MetricsHandler))
	}

	app.Post(RouteRegister, authHandler.Register)
	app.Post(RouteLogin, authHandler.Login)
	app.Post(RouteRefresh, authHandler.RefreshTokens)

	// Защищенные маршруты.
	userRoutes := app.Group(RouteUsers)
	userRoutes.Use(middleware.NewAuthMiddleware(deps.TokenService))
	userRoutes.Get("/profile", userHandler.GetProfile)
	userRoutes.Get("/:id", userHandler.GetProfileByID)

	app.Use(func(c fiber.Ctx) error {
		return respond.JSON(c, fiber.StatusNotFound, dto.ErrorResponse{Error: "route not found"})
	})
}
