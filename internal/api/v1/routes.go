package v1

import (
	"tasktracker/internal/api/v1/handlers"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	h := handlers.New(deps)
	api := app.Group("/api/v1")

	api.Get("/health", h.Health)

	// Auth
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)

	auth := middleware.UseToken(deps.Tokens)

	// User
	userRoutes := api.Group("/users", auth)
	userRoutes.Get("/me", h.Me)
	userRoutes.Post("/me/password", h.ChangePassword)
	userRoutes.Get("/me/analysis", h.Analysis)

	// Task
	taskRoutes := api.Group("/tasks", auth)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/available", h.ListAvailableTasks)
	taskRoutes.Get("/incomplete", h.ListIncompleteTasks)
	taskRoutes.Get("/with-sessions", h.ListTasksWithSessions)
	taskRoutes.Get("/analysis", h.TaskAnalysis)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)
	taskRoutes.Post("/:id/detach", h.DetachTask)
	taskRoutes.Get("/:id/sessions", h.ListTaskSessions)

	// Issue
	issueRoutes := api.Group("/issues", auth)
	issueRoutes.Post("/", h.CreateIssue)
	issueRoutes.Get("/", h.ListIssues)
	issueRoutes.Get("/with-incomplete-tasks", h.ListIssuesWithIncompleteTasks)
	issueRoutes.Get("/:id", h.GetIssue)
	issueRoutes.Put("/:id", h.UpdateIssue)
	issueRoutes.Delete("/:id", h.DeleteIssue)
	issueRoutes.Post("/:id/tasks", h.AppendTask)
	issueRoutes.Put("/:id/order", h.ReorderIssue)
	issueRoutes.Get("/:id/incomplete-tasks", h.ListIncompleteIssueTasks)

	// Pomodoro session
	sessionRoutes := api.Group("/sessions", auth)
	sessionRoutes.Post("/", h.CreateSession)
	sessionRoutes.Get("/", h.ListSessions)
	sessionRoutes.Get("/analysis", h.SessionAnalysis)
	sessionRoutes.Get("/:id", h.GetSession)
	sessionRoutes.Put("/:id/note", h.UpdateSessionNote)
	sessionRoutes.Delete("/:id", h.DeleteSession)

	// Live updates
	if deps.Hub != nil {
		api.Get("/ws", handlers.RequireUpgrade, middleware.UseQueryToken(deps.Tokens), h.Events())
	}
}
