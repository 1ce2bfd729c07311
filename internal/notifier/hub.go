package notifier

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event is a change notification emitted after a successful store mutation.
// Channel is "<entity>_<op>", e.g. "allocation_created".
type Event struct {
	Channel string      `json:"channel"`
	Entity  string      `json:"entity"`
	Op      string      `json:"op"`
	ID      int64       `json:"id"`
	Data    interface{} `json:"data"`
	At      time.Time   `json:"at"`
}

// Publisher is what the store sees: fire-and-forget delivery, no error return.
type Publisher interface {
	Publish(Event)
}

const subscriberBuffer = 32

// Subscriber is one connected client. Its channel is closed on Unsubscribe.
type Subscriber struct {
	id       string
	ch       chan Event
	channels map[string]struct{} // empty set means all channels
}

// Events returns the delivery channel.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

func (s *Subscriber) wants(channel string) bool {
	if len(s.channels) == 0 {
		return true
	}
	_, ok := s.channels[channel]
	return ok
}

// Hub is an in-process broadcast hub. Delivery is at-most-once: a full
// subscriber buffer drops the event rather than stalling the publisher,
// and there is no replay for late subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscriber)}
}

// Subscribe registers a subscriber, optionally filtered to the given channels.
func (h *Hub) Subscribe(channels ...string) *Subscriber {
	sub := &Subscriber{
		id:       uuid.New().String(),
		ch:       make(chan Event, subscriberBuffer),
		channels: make(map[string]struct{}),
	}
	for _, name := range channels {
		if name != "" {
			sub.channels[name] = struct{}{}
		}
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	if _, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Publish delivers ev to every currently-connected subscriber whose filter
// matches. Never blocks.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.wants(ev.Channel) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			log.Debug().Str("channel", ev.Channel).Str("subscriber", sub.id).Msg("Dropping event for slow subscriber")
		}
	}
}

// SubscriberCount reports currently-connected subscribers (health endpoint).
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
