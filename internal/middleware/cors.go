package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"shamba-backend/internal/pkg/response"
)

// CORSConfig allows origins that end with AllowedSuffix (e.g. ".shamba.co.ke")
// plus localhost during development.
type CORSConfig struct {
	AllowedSuffix string
}

// CORS allows credentialed requests from the dashboard frontend.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		allowed := strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:") ||
			(cfg.AllowedSuffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(cfg.AllowedSuffix)))
		if !allowed {
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden)
		}
		c.Set("Access-Control-Allow-Origin", origin)
		c.Set("Access-Control-Allow-Credentials", "true")
		c.Set("Access-Control-Allow-Headers", "Content-Type")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}
