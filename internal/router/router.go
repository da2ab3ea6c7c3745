package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/reportes-go-api/internal/config"
	"github.com/noah-isme/reportes-go-api/internal/handler"
	"github.com/noah-isme/reportes-go-api/internal/middleware"
	"github.com/noah-isme/reportes-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	BackupHandler *handler.BackupHandler
	JWTMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.BackupHandler != nil {
		backup := app.Group("/api/admin/backup", jwtMiddleware, middleware.RequireRole("admin"))
		deps.BackupHandler.Register(backup,
			middleware.RateLimit("backup_restore", cfg.RestoreRateLimit, time.Minute))
	}
}
