package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/employee-directory/internal/api/http/handlers"
	"github.com/spec-kit/employee-directory/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Login and the directory listing are
// deliberately public; everything else sits behind the authorization gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Home)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/login", cfg.Auth.Login)
	app.Get("/users", cfg.Users.List)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Auth.Logout)
	protected.Get("/user/:id", cfg.Users.Get)
	protected.Patch("/pwd/:id", cfg.Users.ChangePassword)
	protected.Post("/add", cfg.Users.Add)
	protected.Patch("/user/:id", cfg.Users.Edit)
	protected.Delete("/user/:id", cfg.Users.Delete)
}
