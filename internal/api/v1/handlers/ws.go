package handlers

import (
	"tasktracker/internal/middleware"
	"tasktracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// RequireUpgrade rejects plain HTTP requests to the websocket endpoint.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Events streams the caller's live events until the connection closes.
func (h *Handler) Events() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalUserID).(int64)
		logger.ContextLogger.Info("Websocket connected", zap.Int64("user_id", userID))
		h.hub.Serve(conn, userID)
		logger.ContextLogger.Info("Websocket disconnected", zap.Int64("user_id", userID))
	})
}
