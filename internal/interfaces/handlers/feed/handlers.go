package feed

import (
	feedsvc "need1-backend/internal/application/feed"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler serves the campus feed: flash drops and safe spots.
type Handler struct {
	Feed *feedsvc.Service
}

// OpenRequests is the public browse feed of open requests with overdue flags.
func (h *Handler) OpenRequests(c *fiber.Ctx) error {
	feed, err := h.Feed.GetOpenFeed(c.Query("category"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Open requests", feed, map[string]interface{}{"count": len(feed)})
}

// FlashDrops lists live drops.
func (h *Handler) FlashDrops(c *fiber.Ctx) error {
	drops, err := h.Feed.ListFlashDrops()
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Flash drops", drops, nil)
}

// CreateFlashDrop adds a drop. Guarded by the manage_flash_drops permission.
func (h *Handler) CreateFlashDrop(c *fiber.Ctx) error {
	var in feedsvc.FlashDropInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	drop, err := h.Feed.CreateFlashDrop(in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Flash drop created", drop, nil)
}

// JoinFlashDrop bumps a live drop's participant count.
func (h *Handler) JoinFlashDrop(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid flash drop id", fiber.StatusBadRequest, nil)
	}
	drop, err := h.Feed.JoinFlashDrop(id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Joined flash drop", drop, nil)
}

// SafeSpots lists campus meetup spots.
func (h *Handler) SafeSpots(c *fiber.Ctx) error {
	spots, err := h.Feed.ListSafeSpots()
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Safe spots", spots, nil)
}

// CreateSafeSpot adds a spot. Guarded by the manage_flash_drops permission.
func (h *Handler) CreateSafeSpot(c *fiber.Ctx) error {
	var in feedsvc.SafeSpotInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	spot, err := h.Feed.CreateSafeSpot(in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Safe spot created", spot, nil)
}
