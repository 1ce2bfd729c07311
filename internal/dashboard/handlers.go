package dashboard

import (
	"shamba-backend/internal/middleware"
	"shamba-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves the role-scoped dashboard.
type Handlers struct {
	Service *Service
}

// View GET /api/v1/dashboard — role comes from the authenticated principal.
func (h *Handlers) View(c *fiber.Ctx) error {
	p, ok := principalFrom(middleware.GetUser(c))
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.Service.Compose(c.Context(), p)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Dashboard composed", data)
}

// principalFrom converts the session user (a JSON round-tripped map, so
// numbers arrive as float64) into a Principal.
func principalFrom(v interface{}) (Principal, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Principal{}, false
	}
	id, ok := m["id"].(float64)
	if !ok || id == 0 {
		return Principal{}, false
	}
	p := Principal{UserID: int64(id)}
	p.Name, _ = m["name"].(string)
	p.Role, _ = m["role"].(string)
	if fid, ok := m["farmerId"].(float64); ok && fid != 0 {
		v := int64(fid)
		p.FarmerID = &v
	}
	return p, true
}
