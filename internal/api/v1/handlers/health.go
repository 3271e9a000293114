package handlers

import (
	"context"
	"time"

	"tasktracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Health pings the database and Redis. Backends that are not configured
// are left out of the report.
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	checks := fiber.Map{}
	healthy := true
	if h.db != nil {
		checks["database"] = "up"
		if err := h.db.PingContext(ctx); err != nil {
			logger.ErrorLogger.Error("Database ping failed", zap.Error(err))
			checks["database"] = "down"
			healthy = false
		}
	}
	if h.redis != nil {
		checks["redis"] = "up"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			logger.ErrorLogger.Error("Redis ping failed", zap.Error(err))
			checks["redis"] = "down"
			healthy = false
		}
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Service unavailable",
			"success": false,
			"status":  fiber.StatusServiceUnavailable,
			"data":    checks,
		})
	}
	return respond(c, fiber.StatusOK, "Service healthy", checks)
}
