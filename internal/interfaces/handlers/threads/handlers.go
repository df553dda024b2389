package threads

import (
	threadssvc "need1-backend/internal/application/threads"
	"need1-backend/internal/middleware"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler serves chat thread routes.
type Handler struct {
	Threads *threadssvc.Service
}

// Mine lists the session user's threads.
func (h *Handler) Mine(c *fiber.Ctx) error {
	threads, err := h.Threads.ListForUser(middleware.ActorUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Threads", threads, nil)
}

// Get returns one thread the caller participates in.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid thread id", fiber.StatusBadRequest, nil)
	}
	thread, err := h.Threads.GetByID(id, middleware.ActorUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Thread", thread, nil)
}

// Messages lists a thread's messages oldest first.
func (h *Handler) Messages(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid thread id", fiber.StatusBadRequest, nil)
	}
	msgs, err := h.Threads.ListMessages(id, middleware.ActorUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Messages", msgs, map[string]interface{}{"count": len(msgs)})
}

// PostMessage appends a message to a live thread.
func (h *Handler) PostMessage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid thread id", fiber.StatusBadRequest, nil)
	}
	var in struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	msg, err := h.Threads.PostMessage(id, middleware.ActorUserID(c), in.Body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Message sent", msg, nil)
}
