package health

import (
	healthsvc "need1-backend/internal/application/health"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handler serves health endpoints.
type Handler struct {
	Health   *healthsvc.Service
	AdminKey string
}

// Live is the cheap liveness probe.
func (h *Handler) Live(c *fiber.Ctx) error {
	return response.Success(c, "ok", nil, nil)
}

// Report returns the full health snapshot. Requires the admin key header.
func (h *Handler) Report(c *fiber.Ctx) error {
	if h.AdminKey == "" || c.Get("x-admin-key") != h.AdminKey {
		return response.Unauthorized(c, "Unauthorized")
	}
	report := h.Health.Collect(c.Context())
	return response.Success(c, "Health report", report, nil)
}
