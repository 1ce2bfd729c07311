package health

import (
	"context"
	"time"

	"shamba-backend/internal/middleware"
	"shamba-backend/internal/notifier"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers serves liveness and basic traffic stats.
type Handlers struct {
	DB        *gorm.DB
	Rdb       *redis.Client
	Hub       *notifier.Hub
	StartedAt time.Time
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	deps := fiber.Map{}
	status := "ok"

	if h.DB != nil {
		deps["database"] = "ok"
		if sqlDB, err := h.DB.DB(); err != nil || sqlDB.Ping() != nil {
			deps["database"] = "error"
			status = "degraded"
		}
	}
	if h.Rdb != nil {
		deps["redis"] = "ok"
		if err := h.Rdb.Ping(context.Background()).Err(); err != nil {
			deps["redis"] = "error"
			status = "degraded"
		}
	} else {
		deps["redis"] = "not configured"
	}

	traffic := fiber.Map{}
	if h.Rdb != nil {
		ctx := context.Background()
		total, _ := h.Rdb.Get(ctx, middleware.KeyReqTotal).Int64()
		errs, _ := h.Rdb.Get(ctx, middleware.KeyReqErrors).Int64()
		traffic["requests"] = total
		traffic["errors"] = errs
	}

	return c.JSON(fiber.Map{
		"status":       status,
		"uptime":       time.Since(h.StartedAt).Round(time.Second).String(),
		"dependencies": deps,
		"traffic":      traffic,
		"subscribers":  h.Hub.SubscriberCount(),
	})
}
