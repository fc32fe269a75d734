package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/bearer-auth/internal/api/http/handlers"
	"github.com/spec-kit/bearer-auth/internal/auth"
	"github.com/spec-kit/bearer-auth/internal/domain"
	"github.com/spec-kit/bearer-auth/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("", cfg.AuthMiddleware.Handle)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", auth.RequireAuthenticated(), cfg.Auth.Logout)
	authGroup.Get("/me", auth.RequireAuthenticated(), cfg.Auth.Me)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users/:username", cfg.Auth.GetUser)
}
