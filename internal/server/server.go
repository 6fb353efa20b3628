// Package server assembles the fiber application.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/logger"
	"github.com/example/supplysetu/internal/routes"
)

// bodyLimitSlack leaves room for multipart framing around an image upload.
const bodyLimitSlack = 1 << 20

// New builds the application with middleware and all routes registered.
func New(deps routes.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "SupplySetu Backend",
		BodyLimit:    deps.Config.UploadMaxBytes + bodyLimitSlack,
		ErrorHandler: errorHandler,
		// params and bodies outlive the request once handed to the store
		Immutable: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.Middleware(deps.Log))
	app.Use(deps.Metrics.Middleware())

	routes.Register(app, deps)
	return app
}

// errorHandler renders every error as {"success": false, "message": ...}.
// Internal errors are logged and replaced by a generic message.
func errorHandler(c *fiber.Ctx, err error) error {
	status := logger.StatusOf(c, err)

	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		logger.FromContext(c).Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		message = "internal server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
