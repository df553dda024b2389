package requests

import (
	"strconv"

	requestssvc "need1-backend/internal/application/requests"
	"need1-backend/internal/middleware"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler serves request lifecycle routes.
type Handler struct {
	Requests *requestssvc.Service
}

// Create posts a new open request for the session user.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in requestssvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	req, err := h.Requests.Create(middleware.ActorUserID(c), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Request created", req, nil)
}

// List returns requests filtered by query params (status, category, remote,
// limit, offset).
func (h *Handler) List(c *fiber.Ctx) error {
	filter := requestssvc.ListFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit", 50),
		Offset:   c.QueryInt("offset", 0),
	}
	if remote := c.Query("remote"); remote != "" {
		v, err := strconv.ParseBool(remote)
		if err == nil {
			filter.Remote = &v
		}
	}
	reqs, err := h.Requests.List(filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Requests", reqs, map[string]interface{}{"count": len(reqs)})
}

// Mine returns the session user's own requests.
func (h *Handler) Mine(c *fiber.Ctx) error {
	reqs, err := h.Requests.ListBySeeker(middleware.ActorUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "My requests", reqs, nil)
}

// Get returns one request, served from cache when warm.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid request id", fiber.StatusBadRequest, nil)
	}
	req, err := h.Requests.GetByID(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request", req, nil)
}

// Complete moves an in_progress request to completed and grants karma.
func (h *Handler) Complete(c *fiber.Ctx) error {
	id, version, err := idAndVersion(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	req, err := h.Requests.Complete(c.Context(), id, middleware.ActorUserID(c), version)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request completed", req, nil)
}

// Cancel moves an open or in_progress request to cancelled.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	id, version, err := idAndVersion(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	req, err := h.Requests.Cancel(c.Context(), id, middleware.ActorUserID(c), middleware.ActorRole(c), version)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Request cancelled", req, nil)
}

func idAndVersion(c *fiber.Ctx) (uuid.UUID, int, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, 0, fiber.NewError(fiber.StatusBadRequest, "Invalid request id")
	}
	var in struct {
		Version int `json:"version"`
	}
	if err := c.BodyParser(&in); err != nil || in.Version < 1 {
		return uuid.Nil, 0, fiber.NewError(fiber.StatusBadRequest, "Missing version")
	}
	return id, in.Version, nil
}
