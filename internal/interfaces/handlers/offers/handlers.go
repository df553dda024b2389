package offers

import (
	offerssvc "need1-backend/internal/application/offers"
	"need1-backend/internal/middleware"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler serves offer routes.
type Handler struct {
	Offers *offerssvc.Service
}

// Submit posts a pending offer on an open request.
func (h *Handler) Submit(c *fiber.Ctx) error {
	var in offerssvc.SubmitInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	offer, err := h.Offers.Submit(c.Context(), middleware.ActorUserID(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Offer submitted", offer, nil)
}

// Accept takes an offer: rejects siblings, opens a thread, moves the
// request to in_progress.
func (h *Handler) Accept(c *fiber.Ctx) error {
	id, version, err := idAndVersion(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	offer, thread, err := h.Offers.Accept(c.Context(), id, middleware.ActorUserID(c), version)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offer accepted", fiber.Map{
		"offer":  offer,
		"thread": thread,
	}, nil)
}

// Decline rejects a pending offer; the request stays open.
func (h *Handler) Decline(c *fiber.Ctx) error {
	id, version, err := idAndVersion(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	offer, err := h.Offers.Decline(c.Context(), id, middleware.ActorUserID(c), version)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offer declined", offer, nil)
}

// ListByRequest returns a request's offers to its seeker.
func (h *Handler) ListByRequest(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid request id", fiber.StatusBadRequest, nil)
	}
	offers, err := h.Offers.ListByRequest(requestID, middleware.ActorUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Offers", offers, map[string]interface{}{"count": len(offers)})
}

// Mine returns the session user's submitted offers.
func (h *Handler) Mine(c *fiber.Ctx) error {
	offers, err := h.Offers.ListByBidder(middleware.ActorUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "My offers", offers, nil)
}

func idAndVersion(c *fiber.Ctx) (uuid.UUID, int, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, 0, fiber.NewError(fiber.StatusBadRequest, "Invalid offer id")
	}
	var in struct {
		Version int `json:"version"`
	}
	if err := c.BodyParser(&in); err != nil || in.Version < 1 {
		return uuid.Nil, 0, fiber.NewError(fiber.StatusBadRequest, "Missing version")
	}
	return id, in.Version, nil
}
