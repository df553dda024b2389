package uploads

import (
	"path/filepath"
	"strings"

	uploadssvc "need1-backend/internal/application/uploads"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handler serves signed-upload routes.
type Handler struct {
	Uploads *uploadssvc.Service
}

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var allowedBuckets = map[string]bool{
	"avatars":        true,
	"request-photos": true,
}

// Sign returns a one-time Supabase upload URL for an image.
func (h *Handler) Sign(c *fiber.Ctx) error {
	var in struct {
		Bucket   string `json:"bucket"`
		Filename string `json:"filename"`
	}
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if !allowedBuckets[in.Bucket] {
		return response.Error(c, "Unknown bucket", fiber.StatusBadRequest, nil)
	}
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !allowedExts[ext] {
		return response.Error(c, "Unsupported file type", fiber.StatusBadRequest, nil)
	}

	signed, err := h.Uploads.CreateSignedUpload(in.Bucket, ext)
	if err != nil {
		return response.Error(c, "Could not create upload URL", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Upload URL created", signed, nil)
}
