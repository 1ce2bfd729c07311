package middleware

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionCookieName = "shamba.sid"
	sessionPrefix     = "session:"
	sessionMaxAge     = 24 * time.Hour
)

// SessionUser is the principal shape stored in the session. After the JSON
// round-trip through the session store, handlers see it as a map with
// float64 numbers.
type SessionUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FarmerID *int64 `json:"farmerId"`
}

// SessionStore abstracts session persistence so the app runs against Redis
// in production and an in-process map when no Redis is configured.
type SessionStore interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Set(ctx context.Context, id string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisSessions stores sessions under "session:<id>".
type RedisSessions struct {
	Rdb *redis.Client
}

func (s *RedisSessions) Get(ctx context.Context, id string) ([]byte, error) {
	b, err := s.Rdb.Get(ctx, sessionPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return b, err
}

func (s *RedisSessions) Set(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	return s.Rdb.Set(ctx, sessionPrefix+id, payload, ttl).Err()
}

func (s *RedisSessions) Delete(ctx context.Context, id string) error {
	return s.Rdb.Del(ctx, sessionPrefix+id).Err()
}

type memorySession struct {
	payload []byte
	expires time.Time
}

// MemorySessions is the single-process fallback store.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]memorySession)}
}

func (s *MemorySessions) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok || time.Now().After(entry.expires) {
		delete(s.sessions, id)
		return nil, nil
	}
	return entry.payload, nil
}

func (s *MemorySessions) Set(_ context.Context, id string, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.sessions[id] = memorySession{payload: payload, expires: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemorySessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Session loads the session for the request cookie into Locals and persists
// it back after the handler chain runs.
func Session(store SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(sessionCookieName)

		var data map[string]interface{}
		if sessionID != "" {
			if b, err := store.Get(c.Context(), sessionID); err == nil && b != nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}
		c.Locals("session_data", data)
		c.Locals("session_id", sessionID)
		if u, ok := data["user"]; ok {
			c.Locals("user", u)
		}

		err := c.Next()
		if err != nil {
			return err
		}

		if sid, _ := c.Locals("session_id").(string); sid != "" {
			if updated, _ := c.Locals("session_data").(map[string]interface{}); updated != nil {
				b, _ := json.Marshal(updated)
				_ = store.Set(context.Background(), sid, b, sessionMaxAge)
			}
		}
		return nil
	}
}

// SetSessionUser stores the principal in the session (after login). The
// value goes through JSON so the in-session shape matches what a reload
// from the store produces.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals("session_data").(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	b, _ := json.Marshal(user)
	var m map[string]interface{}
	_ = json.Unmarshal(b, &m)
	data["user"] = m
	c.Locals("session_data", data)
	c.Locals("user", m)
}

// RegenerateSessionID issues a fresh session id; the caller sets the cookie.
func RegenerateSessionID(c *fiber.Ctx) string {
	id := uuid.New().String()
	c.Locals("session_id", id)
	return id
}

// DestroySession clears session state from Locals; the caller clears the
// cookie and the store entry.
func DestroySession(c *fiber.Ctx) {
	c.Locals("session_data", make(map[string]interface{}))
	c.Locals("session_id", "")
	c.Locals("user", nil)
}

// SessionCookie builds the session cookie for a session id.
func SessionCookie(id string, secure bool) fiber.Cookie {
	return fiber.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
	}
}

// GetSessionID returns the current session id.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("session_id").(string)
	return sid
}
