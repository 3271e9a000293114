package handlers

import (
	"tasktracker/internal/models"
	"tasktracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type createTaskRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Completed   bool   `json:"completed"`
	IssueID     *int64 `json:"issue_id" validate:"omitempty,gt=0"`
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "create task", err)
	}
	id, err := h.svc.CreateTask(c.UserContext(), principal(c), service.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		IssueID:     req.IssueID,
	})
	if err != nil {
		return fail(c, "create task", err)
	}
	audit(c, "Task created successfully", zap.Int64("task_id", id))
	return respond(c, fiber.StatusCreated, "Task created successfully", fiber.Map{"id": id})
}

func (h *Handler) ListTasks(c *fiber.Ctx) error {
	p, err := listParams(c)
	if err != nil {
		return fail(c, "list tasks", err)
	}
	page, err := h.svc.ListTasks(c.UserContext(), principal(c), p.Order, p.PageRequest)
	if err != nil {
		return fail(c, "list tasks", err)
	}
	return respondPage(c, "Tasks retrieved successfully", page)
}

func (h *Handler) ListAvailableTasks(c *fiber.Ctx) error {
	tasks, err := h.svc.ListAvailableTasks(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, "list available tasks", err)
	}
	return respond(c, fiber.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *Handler) ListIncompleteTasks(c *fiber.Ctx) error {
	tasks, err := h.svc.ListIncompleteTasks(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, "list incomplete tasks", err)
	}
	return respond(c, fiber.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *Handler) ListTasksWithSessions(c *fiber.Ctx) error {
	tasks, err := h.svc.ListTasksWithSessions(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, "list tasks with sessions", err)
	}
	return respond(c, fiber.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *Handler) TaskAnalysis(c *fiber.Ctx) error {
	n, err := days(c)
	if err != nil {
		return fail(c, "task analysis", err)
	}
	points, err := h.svc.TaskChart(c.UserContext(), principal(c), n)
	if err != nil {
		return fail(c, "task analysis", err)
	}
	return respond(c, fiber.StatusOK, "Task analysis retrieved successfully", points)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "get task", err)
	}
	detail, err := h.svc.GetTask(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, "get task", err)
	}
	return respond(c, fiber.StatusOK, "Task retrieved successfully", detail)
}

type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Completed   *bool   `json:"completed"`
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "update task", err)
	}
	var req updateTaskRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "update task", err)
	}
	patch := models.TaskPatch{Title: req.Title, Description: req.Description, Completed: req.Completed}
	if err := h.svc.UpdateTask(c.UserContext(), principal(c), id, patch); err != nil {
		return fail(c, "update task", err)
	}
	audit(c, "Task updated successfully", zap.Int64("task_id", id))
	return respond(c, fiber.StatusOK, "Task updated successfully", fiber.Map{"id": id})
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "delete task", err)
	}
	if err := h.svc.DeleteTask(c.UserContext(), principal(c), id); err != nil {
		return fail(c, "delete task", err)
	}
	audit(c, "Task deleted successfully", zap.Int64("task_id", id))
	return respond(c, fiber.StatusOK, "Task deleted successfully", fiber.Map{"id": id})
}

// DetachTask takes the task out of its issue.
func (h *Handler) DetachTask(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "detach task", err)
	}
	if err := h.svc.DetachTask(c.UserContext(), principal(c), id); err != nil {
		return fail(c, "detach task", err)
	}
	audit(c, "Task detached from issue", zap.Int64("task_id", id))
	return respond(c, fiber.StatusOK, "Task detached successfully", fiber.Map{"id": id})
}

func (h *Handler) ListTaskSessions(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, "list task sessions", err)
	}
	p, err := listParams(c)
	if err != nil {
		return fail(c, "list task sessions", err)
	}
	page, err := h.svc.ListTaskSessions(c.UserContext(), principal(c), id, p)
	if err != nil {
		return fail(c, "list task sessions", err)
	}
	return respondPage(c, "Sessions retrieved successfully", page)
}
