package events

import (
	eventssvc "need1-backend/internal/application/events"
	"need1-backend/internal/middleware"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler serves the request audit trail.
type Handler struct {
	Events *eventssvc.Service
}

// ListByRequest returns a request's lifecycle events oldest first.
func (h *Handler) ListByRequest(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid request id", fiber.StatusBadRequest, nil)
	}
	list, err := h.Events.ListByRequest(requestID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Events", list, map[string]interface{}{"count": len(list)})
}

// Mine returns the session user's notification feed: events on their
// requests and their bids, newest first.
func (h *Handler) Mine(c *fiber.Ctx) error {
	list, err := h.Events.GetUserEvents(middleware.ActorUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notifications", list, map[string]interface{}{"count": len(list)})
}
