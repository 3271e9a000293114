package handlers

import (
	"tasktracker/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type createIssueRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	TaskIDs     []int64 `json:"task_ids" validate:"omitempty,dive,gt=0"`
}

func (h *Handler) CreateIssue(c *fiber.Ctx) error {
	var req createIssueRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "create issue", err)
	}
	id, err := h.svc.CreateIssue(c.UserContext(), principal(c), req.Title, req.Description, req.TaskIDs)
	if err != nil {
		return fail(c, "create issue", err)
	}
	audit(c, "Issue created successfully", zap.Int64("issue_id", id), zap.Int("tasks", len(req.TaskIDs)))
	return respond(c, fiber.StatusCreated, "Issue created successfully", fiber.Map{"id": id})
}

func (h *Handler) ListIssues(c *fiber.Ctx) error {
	p, err := listParams(c)
	if err != nil {
		return fail(c, "list issues", err)
	}
	page, err := h.svc.ListIssues(c.UserContext(), principal(c), p.Order, p.PageRequest)
	if err != nil {
		return fail(c, "list issues", err)
	}
	return respondPage(c, "Issues retrieved successfully", page)
}

func (h *Handler) ListIssuesWithIncompleteTasks(c *fiber.Ctx) error {
	issues, err := h.svc.ListIssuesWithIncompleteTasks(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, "list issues", err)
	}
	return respond(c, fiber.StatusOK, "Issues retrieved successfully", issues)
}

func (h *Handler) GetIssue(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "get issue", err)
	}
	detail, err := h.svc.GetIssue(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, "get issue", err)
	}
	return respond(c, fiber.StatusOK, "Issue retrieved successfully", detail)
}

func (h *Handler) ListIncompleteIssueTasks(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "list issue tasks", err)
	}
	tasks, err := h.svc.ListIncompleteIssueTasks(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, "list issue tasks", err)
	}
	return respond(c, fiber.StatusOK, "Tasks retrieved successfully", tasks)
}

type updateIssueRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

func (h *Handler) UpdateIssue(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "update issue", err)
	}
	var req updateIssueRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "update issue", err)
	}
	patch := models.IssuePatch{Title: req.Title, Description: req.Description}
	if err := h.svc.UpdateIssue(c.UserContext(), principal(c), id, patch); err != nil {
		return fail(c, "update issue", err)
	}
	audit(c, "Issue updated successfully", zap.Int64("issue_id", id))
	return respond(c, fiber.StatusOK, "Issue updated successfully", fiber.Map{"id": id})
}

func (h *Handler) DeleteIssue(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "delete issue", err)
	}
	if err := h.svc.DeleteIssue(c.UserContext(), principal(c), id); err != nil {
		return fail(c, "delete issue", err)
	}
	audit(c, "Issue deleted successfully", zap.Int64("issue_id", id))
	return respond(c, fiber.StatusOK, "Issue deleted successfully", fiber.Map{"id": id})
}

type appendTaskRequest struct {
	TaskID int64 `json:"task_id" validate:"required,gt=0"`
}

func (h *Handler) AppendTask(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "append task", err)
	}
	var req appendTaskRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "append task", err)
	}
	if err := h.svc.AppendTask(c.UserContext(), principal(c), id, req.TaskID); err != nil {
		return fail(c, "append task", err)
	}
	audit(c, "Task added to issue", zap.Int64("issue_id", id), zap.Int64("task_id", req.TaskID))
	return respond(c, fiber.StatusOK, "Task added to issue successfully", fiber.Map{"id": id})
}

type reorderRequest struct {
	TaskIDs []int64 `json:"task_ids" validate:"required,dive,gt=0"`
}

func (h *Handler) ReorderIssue(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "reorder issue", err)
	}
	var req reorderRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "reorder issue", err)
	}
	if err := h.svc.ReorderIssue(c.UserContext(), principal(c), id, req.TaskIDs); err != nil {
		return fail(c, "reorder issue", err)
	}
	audit(c, "Issue tasks reordered", zap.Int64("issue_id", id))
	return respond(c, fiber.StatusOK, "Task order changed successfully", fiber.Map{"id": id})
}
