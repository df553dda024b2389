package auth

import (
	"context"

	authsvc "need1-backend/internal/application/auth"
	userssvc "need1-backend/internal/application/users"
	"need1-backend/internal/middleware"
	"need1-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handler serves authentication routes.
type Handler struct {
	Auth       *authsvc.Service
	Users      *userssvc.Service
	Redis      *redis.Client
	SessionCfg middleware.SessionConfig
}

const userSessionsPrefix = "user_sessions:"

// Register creates an account and signs the new user in.
func (h *Handler) Register(c *fiber.Ctx) error {
	var in userssvc.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Users.Register(in)
	if err != nil {
		return response.FromError(c, err)
	}
	h.establishSession(c, middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Role:     user.Role,
	})
	return response.SuccessCreated(c, "Account created", user, nil)
}

// Login verifies credentials and establishes a session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var in authsvc.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Auth.Login(in)
	if err != nil {
		return response.Error(c, "Invalid email or password", fiber.StatusUnauthorized, nil)
	}
	h.establishSession(c, middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Role:     user.Role,
	})
	return response.Success(c, "Logged in", user, nil)
}

// MagicLink issues a one-time sign-in link. Always 200 so emails cannot be
// probed.
func (h *Handler) MagicLink(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Auth.IssueMagicLink(c.Context(), in.Email); err != nil {
		log.Error().Err(err).Msg("issue magic link")
		return response.Error(c, "Could not send sign-in link", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "If the address is registered, a sign-in link is on its way", nil, nil)
}

// VerifyMagicLink consumes a token and signs the user in.
func (h *Handler) VerifyMagicLink(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return response.Error(c, "Missing token", fiber.StatusBadRequest, nil)
	}
	user, err := h.Auth.VerifyMagicLink(c.Context(), token)
	if err != nil {
		return response.FromError(c, err)
	}
	h.establishSession(c, middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Role:     user.Role,
	})
	return response.Success(c, "Logged in", user, nil)
}

// Me returns the session user.
func (h *Handler) Me(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	return response.Success(c, "Current user", user, nil)
}

// Logout destroys the session in Redis and clears the cookie.
func (h *Handler) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	if sessionID != "" {
		ctx := context.Background()
		h.Redis.Del(ctx, middleware.SessionRedisPrefix+sessionID)
		userID := middleware.ActorUserID(c)
		if userID != uuid.Nil {
			h.Redis.SRem(ctx, userSessionsPrefix+userID.String(), sessionID)
		}
	}
	middleware.DestroySession(c)
	cookie := middleware.SessionCookieConfig(h.SessionCfg)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out", nil, nil)
}

func (h *Handler) establishSession(c *fiber.Ctx, user middleware.SessionUser) {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, user)
	h.Redis.SAdd(context.Background(), userSessionsPrefix+user.UserID, sessionID)

	cookie := middleware.SessionCookieConfig(h.SessionCfg)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
}
