package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"shamba-backend/internal/notifier"

	"gorm.io/gorm"
)

// Mutation operation names, also the event channel suffixes.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// Collection is one typed entity collection. Mutations are serialized by a
// per-collection mutex (single-writer discipline); reads go straight to the
// backend and never observe a partially-applied write. Ids come from a
// monotonic counter seeded from MAX(id) at open, so a deleted id is never
// handed out again.
type Collection[T any] struct {
	db     *gorm.DB
	schema Schema
	events notifier.Publisher
	mu     sync.Mutex
	lastID atomic.Int64
}

// NewCollection opens a collection over an already-migrated table.
func NewCollection[T any](db *gorm.DB, schema Schema, events notifier.Publisher) *Collection[T] {
	c := &Collection[T]{db: db, schema: schema, events: events}
	var maxID int64
	db.Table(schema.Table).Select("COALESCE(MAX(id), 0)").Scan(&maxID)
	c.lastID.Store(maxID)
	return c
}

// Schema exposes the collection's field whitelist (used by handlers for
// field-level patches).
func (c *Collection[T]) Schema() Schema {
	return c.schema
}

// List returns all records in insertion order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, c.upstream(err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Get returns the record with the given id or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id int64) (*T, error) {
	var rec T
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, c.upstream(err)
	}
	return &rec, nil
}

// Create inserts a new record from whitelisted attributes, filling defaults
// and stamping both timestamps. The change event is published after the row
// is durably applied, never before.
func (c *Collection[T]) Create(ctx context.Context, attrs map[string]interface{}) (*T, error) {
	cols, err := c.schema.Apply(attrs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	id := c.lastID.Add(1)
	now := time.Now().UTC()
	cols["id"] = id
	cols["created_at"] = now
	cols["updated_at"] = now
	err = c.db.WithContext(ctx).Model(new(T)).Create(cols).Error
	c.mu.Unlock()
	if err != nil {
		return nil, c.upstream(err)
	}

	rec, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.publish(OpCreated, id, rec)
	return rec, nil
}

// Update merges whitelisted attributes over the existing record and advances
// updatedAt strictly past its prior value. createdAt is never touched.
func (c *Collection[T]) Update(ctx context.Context, id int64, attrs map[string]interface{}) (*T, error) {
	return c.applyUpdate(ctx, id, c.schema.Merge(attrs))
}

// PatchField is a single-field update, e.g. contract fulfillment or the
// notification read flag. Unknown field names are a validation error.
func (c *Collection[T]) PatchField(ctx context.Context, id int64, field string, value interface{}) (*T, error) {
	f, ok := c.schema.Fields[field]
	if !ok {
		return nil, unknownField(field)
	}
	return c.applyUpdate(ctx, id, map[string]interface{}{f.Column: coerce(f, value)})
}

func (c *Collection[T]) applyUpdate(ctx context.Context, id int64, cols map[string]interface{}) (*T, error) {
	c.mu.Lock()
	prev, err := c.stampOf(ctx, id)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	cols["updated_at"] = nextStamp(prev)
	err = c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(cols).Error
	c.mu.Unlock()
	if err != nil {
		return nil, c.upstream(err)
	}

	rec, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.publish(OpUpdated, id, rec)
	return rec, nil
}

// Delete hard-removes the record and returns its prior state.
func (c *Collection[T]) Delete(ctx context.Context, id int64) (*T, error) {
	prev, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	tx := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	c.mu.Unlock()
	if tx.Error != nil {
		return nil, c.upstream(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	c.publish(OpDeleted, id, prev)
	return prev, nil
}

func (c *Collection[T]) stampOf(ctx context.Context, id int64) (time.Time, error) {
	var row struct{ UpdatedAt time.Time }
	err := c.db.WithContext(ctx).Table(c.schema.Table).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, c.upstream(err)
	}
	return row.UpdatedAt, nil
}

// nextStamp keeps updatedAt strictly increasing even when the clock has not
// ticked past the previous write.
func nextStamp(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}

func (c *Collection[T]) publish(op string, id int64, rec *T) {
	if c.events == nil {
		return
	}
	c.events.Publish(notifier.Event{
		Channel: c.schema.Event + "_" + op,
		Entity:  c.schema.Kind,
		Op:      op,
		ID:      id,
		Data:    rec,
		At:      time.Now().UTC(),
	})
}

func (c *Collection[T]) upstream(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
