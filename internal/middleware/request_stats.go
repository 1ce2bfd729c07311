package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for the request counters surfaced by the health endpoint.
const (
	KeyReqTotal  = "metrics:req_total"
	KeyReqErrors = "metrics:req_errors"
)

// RequestStats records request/error counters in Redis (health endpoints
// and favicons excluded). Counter failures are ignored; stats are
// best-effort.
func RequestStats(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}
		ctx := context.Background()
		_ = rdb.Incr(ctx, KeyReqTotal).Err()

		err := c.Next()

		if c.Response().StatusCode() >= 500 {
			_ = rdb.Incr(ctx, KeyReqErrors).Err()
		}
		return err
	}
}
