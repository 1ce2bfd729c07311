package notifier

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redisChannel = "shamba:events"

	// outbound queue between the mutating request and the Redis forwarder
	bridgeBuffer = 256
)

// envelope wraps an event on the wire so an instance can skip its own
// messages when they come back from Redis.
type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// Bridge fans events out across instances via Redis pub/sub while still
// delivering locally through the hub. Remote delivery keeps the same
// best-effort semantics as the hub: Publish enqueues and returns, a
// background forwarder does the network I/O, and a full queue or a publish
// failure drops the event. The mutating request never waits on Redis.
type Bridge struct {
	hub    *Hub
	rdb    *redis.Client
	origin string
	sub    *redis.PubSub
	out    chan Event
	cancel context.CancelFunc
}

// NewBridge starts listening on the shared Redis channel, relays remote
// events into the local hub and starts the outbound forwarder.
func NewBridge(hub *Hub, rdb *redis.Client) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		hub:    hub,
		rdb:    rdb,
		origin: uuid.New().String(),
		sub:    rdb.Subscribe(ctx, redisChannel),
		out:    make(chan Event, bridgeBuffer),
		cancel: cancel,
	}
	go b.relay()
	go b.forward(ctx)
	return b
}

// Publish delivers locally, then hands the event to the forwarder. Never
// blocks on broadcast I/O.
func (b *Bridge) Publish(ev Event) {
	b.hub.Publish(ev)

	select {
	case b.out <- ev:
	default:
		log.Debug().Str("channel", ev.Channel).Msg("Dropping event, Redis forwarder queue full")
	}
}

func (b *Bridge) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.out:
			payload, err := json.Marshal(envelope{Origin: b.origin, Event: ev})
			if err != nil {
				log.Error().Err(err).Str("channel", ev.Channel).Msg("Marshal event for Redis failed")
				continue
			}
			if err := b.rdb.Publish(ctx, redisChannel, payload).Err(); err != nil {
				log.Debug().Err(err).Str("channel", ev.Channel).Msg("Redis publish failed")
			}
		}
	}
}

func (b *Bridge) relay() {
	for msg := range b.sub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Debug().Err(err).Msg("Bad event payload on Redis channel")
			continue
		}
		if env.Origin == b.origin {
			continue
		}
		b.hub.Publish(env.Event)
	}
}

// Close stops the forwarder and the relay loop.
func (b *Bridge) Close() error {
	b.cancel()
	return b.sub.Close()
}
