package users

import (
	userssvc "need1-backend/internal/application/users"
	"need1-backend/internal/middleware"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler serves user and profile routes.
type Handler struct {
	Users *userssvc.Service
}

// Get returns a user's public profile.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	user, err := h.Users.GetByID(id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User", user, nil)
}

// UpdateProfile edits the caller's own profile.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var in userssvc.UpdateProfileInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Users.UpdateProfile(middleware.ActorUserID(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile updated", user, nil)
}

// Stats returns the caller's karma and activity counters.
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.Users.GetStats(middleware.ActorUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stats", stats, nil)
}

// UpdateRole assigns a role. Guarded by the assign_role permission.
func (h *Handler) UpdateRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	var in struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Users.UpdateRole(id, in.Role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role updated", user, nil)
}

// Remove soft-deletes a user. Guarded by the remove_user permission.
func (h *Handler) Remove(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	if err := h.Users.Remove(id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User removed", nil, nil)
}
