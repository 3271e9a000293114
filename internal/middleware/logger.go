package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"tasktracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler recovers panics and logs every request.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Error(fmt.Sprintf("Recovered from panic: %v", r),
					zap.String("url", c.OriginalURL()),
					zap.String("stack", string(debug.Stack())),
				)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Internal server error",
					"success": false,
					"status":  fiber.StatusInternalServerError,
				})
			}
		}()
		logger.RequestLogger.Info("Incoming request",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
		)
		err = c.Next()
		logger.RequestLogger.Info("Request completed",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}

// FiberErrorHandler renders errors that escape handlers (unknown routes,
// rate limiting, body limits) in the response envelope.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, message = fe.Code, fe.Message
	} else {
		logger.ErrorLogger.Error("Unhandled error", zap.String("url", c.OriginalURL()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  code,
	})
}
