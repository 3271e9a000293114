package handlers

import (
	"database/sql"
	"strconv"

	"tasktracker/internal/apperror"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/internal/service"
	"tasktracker/internal/websocket"
	"tasktracker/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the /api/v1 endpoints.
type Handler struct {
	svc      *service.Service
	validate *validator.Validate
	hub      *websocket.Hub
	db       *sql.DB
	redis    *redis.Client
}

func New(deps *config.Dependencies) *Handler {
	v := deps.Validate
	if v == nil {
		v = validator.New()
	}
	return &Handler{
		svc:      deps.Service,
		validate: v,
		hub:      deps.Hub,
		db:       deps.DB,
		redis:    deps.RedisClient,
	}
}

var statusByKind = map[apperror.Kind]int{
	apperror.KindNotFound:        fiber.StatusNotFound,
	apperror.KindForbidden:       fiber.StatusForbidden,
	apperror.KindValidation:      fiber.StatusBadRequest,
	apperror.KindConflict:        fiber.StatusConflict,
	apperror.KindUnauthenticated: fiber.StatusUnauthorized,
	apperror.KindInternal:        fiber.StatusInternalServerError,
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": true,
		"status":  status,
		"data":    data,
	})
}

func respondPage[T any](c *fiber.Ctx, message string, p models.Page[T]) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   message,
		"success":   true,
		"status":    fiber.StatusOK,
		"data":      p.Items,
		"total":     p.Total,
		"page":      p.Page,
		"page_size": p.PageSize,
	})
}

// fail writes err as an error envelope. Internal causes are logged, never
// sent to the client.
func fail(c *fiber.Ctx, action string, err error) error {
	kind := apperror.KindOf(err)
	status := statusByKind[kind]
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("url", c.OriginalURL()),
		zap.Error(err),
	}
	if id, ok := c.Locals(middleware.LocalUserID).(int64); ok {
		fields = append(fields, zap.Int64("user_id", id))
	}
	switch kind {
	case apperror.KindInternal:
		logger.ErrorLogger.Error("Error "+action, fields...)
	case apperror.KindForbidden, apperror.KindUnauthenticated:
		logger.SecurityLogger.Warn("Denied "+action, fields...)
	default:
		logger.AuditLogger.Warn("Rejected "+action, fields...)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": apperror.PublicMessage(err),
		"success": false,
		"status":  status,
	})
}

func principal(c *fiber.Ctx) int64 {
	id, _ := c.Locals(middleware.LocalUserID).(int64)
	return id
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("%s must be a positive integer", name)
	}
	return id, nil
}

// bind parses the JSON body into dst and runs its validate tags.
func (h *Handler) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Validation("Bad request")
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperror.Validation("Validation error: %s", err.Error())
	}
	return nil
}

func listParams(c *fiber.Ctx) (service.ListParams, error) {
	return service.ParseListParams(c.Query("page"), c.Query("page_size"), c.Query("order"), c.Query("key"))
}

// days reads the chart window; it defaults to the last seven days.
func days(c *fiber.Ctx) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return 7, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("days must be 7, 30 or 180")
	}
	return n, nil
}

func audit(c *fiber.Ctx, message string, fields ...zap.Field) {
	logger.AuditLogger.Info(message, append(fields, zap.Int64("user_id", principal(c)))...)
}
