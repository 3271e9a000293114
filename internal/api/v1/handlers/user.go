package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.svc.Me(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, "get user", err)
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72,nefield=OldPassword"`
}

// ChangePassword returns a new token for the changed credentials.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := h.bind(c, &req); err != nil {
		return fail(c, "change password", err)
	}
	tok, err := h.svc.ChangePassword(c.UserContext(), principal(c), req.OldPassword, req.NewPassword)
	if err != nil {
		return fail(c, "change password", err)
	}
	audit(c, "Password changed")
	return respond(c, fiber.StatusOK, "Password changed successfully", fiber.Map{"token": tok})
}

func (h *Handler) Analysis(c *fiber.Ctx) error {
	sum, err := h.svc.Summary(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, "build analysis", err)
	}
	return respond(c, fiber.StatusOK, "Analysis retrieved successfully", sum)
}
