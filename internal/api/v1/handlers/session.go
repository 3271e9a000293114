package handlers

import (
	"time"

	"tasktracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type createSessionRequest struct {
	TaskID           int64     `json:"task_id" validate:"required,gt=0"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	EstimatedEndTime time.Time `json:"estimated_end_time" validate:"required"`
	ActualEndTime    time.Time `json:"actual_end_time" validate:"required"`
	DurationMinutes  int       `json:"duration_minutes" validate:"gte=0,lte=1440"`
	BreakPointCount  int       `json:"break_point_count" validate:"gte=0"`
	Note             string    `json:"note" validate:"max=2000"`
}

func (h *Handler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "create session", err)
	}
	id, err := h.svc.CreateSession(c.UserContext(), principal(c), service.NewSession{
		TaskID:           req.TaskID,
		StartTime:        req.StartTime,
		EstimatedEndTime: req.EstimatedEndTime,
		ActualEndTime:    req.ActualEndTime,
		DurationMinutes:  req.DurationMinutes,
		BreakPointCount:  req.BreakPointCount,
		Note:             req.Note,
	})
	if err != nil {
		return fail(c, "create session", err)
	}
	audit(c, "Pomodoro session created", zap.Int64("session_id", id), zap.Int64("task_id", req.TaskID))
	return respond(c, fiber.StatusCreated, "Session created successfully", fiber.Map{"id": id})
}

func (h *Handler) ListSessions(c *fiber.Ctx) error {
	p, err := listParams(c)
	if err != nil {
		return fail(c, "list sessions", err)
	}
	page, err := h.svc.ListSessions(c.UserContext(), principal(c), p)
	if err != nil {
		return fail(c, "list sessions", err)
	}
	return respondPage(c, "Sessions retrieved successfully", page)
}

func (h *Handler) SessionAnalysis(c *fiber.Ctx) error {
	n, err := days(c)
	if err != nil {
		return fail(c, "session analysis", err)
	}
	points, err := h.svc.PomodoroChart(c.UserContext(), principal(c), n)
	if err != nil {
		return fail(c, "session analysis", err)
	}
	return respond(c, fiber.StatusOK, "Session analysis retrieved successfully", points)
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "get session", err)
	}
	detail, err := h.svc.GetSession(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, "get session", err)
	}
	return respond(c, fiber.StatusOK, "Session retrieved successfully", detail)
}

type updateNoteRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

func (h *Handler) UpdateSessionNote(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "update session note", err)
	}
	var req updateNoteRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "update session note", err)
	}
	if err := h.svc.UpdateSessionNote(c.UserContext(), principal(c), id, req.Note); err != nil {
		return fail(c, "update session note", err)
	}
	audit(c, "Session note updated", zap.Int64("session_id", id))
	return respond(c, fiber.StatusOK, "Session note updated successfully", fiber.Map{"id": id})
}

func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "delete session", err)
	}
	if err := h.svc.DeleteSession(c.UserContext(), principal(c), id); err != nil {
		return fail(c, "delete session", err)
	}
	audit(c, "Session deleted", zap.Int64("session_id", id))
	return respond(c, fiber.StatusOK, "Session deleted successfully", fiber.Map{"id": id})
}
