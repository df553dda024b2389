package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"need1-backend/internal/config"
	"need1-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Request{}, &domain.Offer{},
		&domain.Thread{}, &domain.Message{}, &domain.RequestEvent{},
		&domain.KarmaEntry{}, &domain.FlashDrop{}, &domain.SafeSpot{},
	))

	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Env:      "test",
		Port:     "0",
		RedisURL: "redis://" + mr.Addr(),
	}
	app, err := CreateApp(db, cfg)
	require.NoError(t, err)
	return app, db
}

type client struct {
	t      *testing.T
	app    *fiber.App
	cookie string
}

func (c *client) do(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)

	for _, sc := range resp.Header.Values("Set-Cookie") {
		c.cookie = sc
	}

	var parsed map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &parsed)
	return resp, parsed
}

func register(t *testing.T, app *fiber.App, name, email string) *client {
	t.Helper()
	c := &client{t: t, app: app}
	resp, _ := c.do(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"fullname": name,
		"email":    email,
		"password": "s3cret!pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, c.cookie)
	return c
}

func dataField(body map[string]interface{}, keys ...string) interface{} {
	v := body["data"]
	for _, k := range keys {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

func TestAuthFlow(t *testing.T) {
	app, _ := setupApp(t)
	c := register(t, app, "Maya Chen", "maya@campus.edu")

	resp, body := c.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "maya@campus.edu", dataField(body, "email"))

	resp, _ = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Fresh login works with the registered password
	login := &client{t: t, app: app}
	resp, _ = login.do(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "maya@campus.edu",
		"password": "s3cret!pass",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = login.do(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "maya@campus.edu",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnauthenticatedRejected(t *testing.T) {
	app, _ := setupApp(t)
	c := &client{t: t, app: app}

	resp, _ := c.do(http.MethodGet, "/api/v1/requests/", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	app, db := setupApp(t)
	seeker := register(t, app, "Maya Chen", "maya@campus.edu")
	helper := register(t, app, "Dev Patel", "dev@campus.edu")

	// Seeker posts a request
	resp, body := seeker.do(http.MethodPost, "/api/v1/requests/", map[string]interface{}{
		"title":       "Calculus tutoring",
		"description": "Midterm prep",
		"category":    "Tutoring",
		"budget":      15,
		"is_remote":   true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID, _ := dataField(body, "request_id").(string)
	require.NotEmpty(t, requestID)

	// Helper submits an offer
	resp, body = helper.do(http.MethodPost, "/api/v1/offers/", map[string]interface{}{
		"request_id": requestID,
		"message":    "Aced that class last year",
		"amount":     12,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	offerID, _ := dataField(body, "offer_id").(string)
	require.NotEmpty(t, offerID)

	// Submit bumped version to 2; accept with that version
	resp, body = seeker.do(http.MethodPost, "/api/v1/offers/"+offerID+"/accept", map[string]interface{}{
		"version": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	threadID, _ := dataField(body, "thread", "thread_id").(string)
	require.NotEmpty(t, threadID)

	// Stale version rejected
	resp, _ = seeker.do(http.MethodPost, "/api/v1/requests/"+requestID+"/complete", map[string]interface{}{
		"version": 2,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Both parties chat in the thread
	resp, _ = seeker.do(http.MethodPost, "/api/v1/threads/"+threadID+"/messages", map[string]interface{}{
		"body": "Library at 4?",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = helper.do(http.MethodPost, "/api/v1/threads/"+threadID+"/messages", map[string]interface{}{
		"body": "Works for me",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// A third party cannot read the thread
	outsider := register(t, app, "Sam Reyes", "sam@campus.edu")
	resp, _ = outsider.do(http.MethodGet, "/api/v1/threads/"+threadID+"/messages", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Completion with the right version grants karma
	resp, _ = seeker.do(http.MethodPost, "/api/v1/requests/"+requestID+"/complete", map[string]interface{}{
		"version": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var helperUser domain.User
	require.NoError(t, db.Where("email = ?", "dev@campus.edu").First(&helperUser).Error)
	assert.Equal(t, 5, helperUser.KarmaScore)
	assert.Equal(t, 10, helperUser.CampusCredits)

	// The audit trail captured the whole lifecycle
	resp, body = seeker.do(http.MethodGet, "/api/v1/requests/"+requestID+"/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	events, _ := body["data"].([]interface{})
	assert.Len(t, events, 4)
}

func TestRoleGuards(t *testing.T) {
	app, db := setupApp(t)
	student := register(t, app, "Maya Chen", "maya@campus.edu")

	// Students cannot create flash drops
	resp, _ := student.do(http.MethodPost, "/api/v1/feed/flash-drops", map[string]interface{}{
		"title":   "Finals week swap",
		"ends_at": "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Promote to moderator directly, then retry after re-login
	require.NoError(t, db.Model(&domain.User{}).
		Where("email = ?", "maya@campus.edu").
		Update("role", "moderator").Error)
	mod := &client{t: t, app: app}
	resp, _ = mod.do(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "maya@campus.edu",
		"password": "s3cret!pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = mod.do(http.MethodPost, "/api/v1/feed/flash-drops", map[string]interface{}{
		"title":   "Finals week swap",
		"ends_at": "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHealthLive(t *testing.T) {
	app, _ := setupApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorShape(t *testing.T) {
	app, _ := setupApp(t)
	seeker := register(t, app, "Maya Chen", "maya@campus.edu")

	resp, body := seeker.do(http.MethodGet, fmt.Sprintf("/api/v1/requests/%s", "00000000-0000-0000-0000-000000000001"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	errObj, _ := body["error"].(map[string]interface{})
	require.NotNil(t, errObj)
	assert.EqualValues(t, 404, errObj["statusCode"])
}
