package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracingApp() *fiber.App {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetTraceID(c))
	})
	return app
}

func TestTracingGeneratesTraceID(t *testing.T) {
	app := newTracingApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	header := resp.Header.Get("X-Trace-Id")
	_, err = uuid.Parse(header)
	assert.NoError(t, err)
}

func TestTracingKeepsInboundTraceID(t *testing.T) {
	app := newTracingApp()
	inbound := uuid.New().String()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", inbound)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, inbound, resp.Header.Get("X-Trace-Id"))
}

func TestTracingRejectsMalformedInboundTraceID(t *testing.T) {
	app := newTracingApp()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "not-a-uuid")
	resp, err := app.Test(req)
	require.NoError(t, err)
	header := resp.Header.Get("X-Trace-Id")
	assert.NotEqual(t, "not-a-uuid", header)
	_, err = uuid.Parse(header)
	assert.NoError(t, err)
}
