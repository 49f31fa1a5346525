package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voting-identity/internal/api/http/handlers"
	"github.com/spec-kit/voting-identity/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Import         *handlers.ImportHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/first-login", cfg.Auth.FirstLoginPassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole("admin", "super-admin"))
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Post("/import", cfg.Import.Import)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
}
