package handlers

import (
	"tasktracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,excludesall=@?"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "register", err)
	}
	id, err := h.svc.Register(c.UserContext(), req.Email, req.Username, req.Password)
	if err != nil {
		return fail(c, "register", err)
	}
	logger.AuditLogger.Info("User registered successfully", zap.Int64("user_id", id))
	return respond(c, fiber.StatusCreated, "User created successfully", fiber.Map{"id": id})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "login", err)
	}
	res, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, "login", err)
	}
	logger.SecurityLogger.Info("User logged in", zap.Int64("user_id", res.UserID), zap.String("ip", c.IP()))
	return respond(c, fiber.StatusOK, "Login successful", res)
}
