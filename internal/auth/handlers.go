package auth

import (
	"context"
	"errors"

	"shamba-backend/internal/middleware"
	"shamba-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles the auth routes.
type Handlers struct {
	UserFinder UserFinder
	Sessions   middleware.SessionStore
	Secure     bool // Secure flag on the session cookie (production)
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest)
	}
	if input.Email == "" || input.Password == "" {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrIncorrectPassword):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized)
		case errors.Is(err, ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
		}
	}

	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, SessionUserFor(user))
	cookie := middleware.SessionCookie(sid, h.Secure)
	c.Cookie(&cookie)
	return response.Success(c, "Login successful", SessionUserFor(user))
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, ErrNotAuthenticated.Error())
	}
	return response.Success(c, "Authenticated", user)
}

// Logout DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sid := middleware.GetSessionID(c); sid != "" && h.Sessions != nil {
		_ = h.Sessions.Delete(context.Background(), sid)
	}
	middleware.DestroySession(c)
	cookie := middleware.SessionCookie("", h.Secure)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out", nil)
}
