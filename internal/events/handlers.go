// Package events exposes the change-notifier stream over SSE. Delivery is
// best-effort: a disconnected client simply misses what was published while
// it was away; there is no replay.
package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shamba-backend/internal/notifier"

	"github.com/gofiber/fiber/v2"
)

const keepaliveInterval = 25 * time.Second

// Handlers serves the event stream.
type Handlers struct {
	Hub *notifier.Hub
}

// Stream GET /api/v1/events/stream?channels=allocation_created,farmer_updated
// An empty channels filter receives everything.
func (h *Handlers) Stream(c *fiber.Ctx) error {
	var channels []string
	for _, name := range strings.Split(c.Query("channels"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			channels = append(channels, name)
		}
	}
	sub := h.Hub.Subscribe(channels...)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.Hub.Unsubscribe(sub)
		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()
		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Channel, payload)
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}
