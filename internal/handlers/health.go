package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	started time.Time
	driver  string
}

func NewHealthHandler(driver string) *HealthHandler {
	return &HealthHandler{started: time.Now(), driver: driver}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"store":     h.driver,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	})
}
