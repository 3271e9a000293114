package middleware

import (
	"errors"
	"strings"

	"tasktracker/pkg/logger"
	"tasktracker/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LocalUserID is the fiber.Ctx locals key holding the principal id (int64).
const LocalUserID = "userID"

func unauthorized(c *fiber.Ctx, message string) error {
	logger.SecurityLogger.Warn("Rejected token",
		zap.String("reason", message),
		zap.String("url", c.OriginalURL()),
		zap.String("ip", c.IP()),
	)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  fiber.StatusUnauthorized,
	})
}

// UseToken requires a valid bearer token and stores its user id in
// c.Locals(LocalUserID).
func UseToken(tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "No token provided")
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthorized(c, "Invalid token format")
		}
		return verify(c, tokens, parts[1])
	}
}

// UseQueryToken reads the token from the "token" query parameter, for
// websocket upgrades where browsers cannot set headers.
func UseQueryToken(tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("token")
		if raw == "" {
			return unauthorized(c, "No token provided")
		}
		return verify(c, tokens, raw)
	}
}

func verify(c *fiber.Ctx, tokens *token.Manager, raw string) error {
	claims, err := tokens.Verify(raw)
	if errors.Is(err, token.ErrExpiredToken) {
		return unauthorized(c, "Token expired")
	}
	if err != nil {
		return unauthorized(c, "Invalid token")
	}
	c.Locals(LocalUserID, claims.UserID)
	return c.Next()
}
