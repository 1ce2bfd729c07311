// Package resources exposes one CRUD route set per entity collection. The
// handlers are generic over the entity type: all request/response shaping is
// identical across collections, only the store collection differs.
package resources

import (
	"errors"
	"strconv"

	"shamba-backend/internal/pkg/response"
	"shamba-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

// Register mounts list/get/create/update/delete under the given group.
func Register[T any](r fiber.Router, col *store.Collection[T]) {
	r.Get("/", List(col))
	r.Post("/", Create(col))
	r.Get("/:id", Get(col))
	r.Put("/:id", Update(col))
	r.Delete("/:id", Delete(col))
}

// List GET /
func List[T any](col *store.Collection[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := col.List(c.Context())
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Records fetched", items)
	}
}

// Get GET /:id
func Get[T any](col *store.Collection[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return response.Error(c, "Invalid id", fiber.StatusBadRequest)
		}
		rec, err := col.Get(c.Context(), id)
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Record fetched", rec)
	}
}

// Create POST /
func Create[T any](col *store.Collection[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		attrs, err := parseBody(c)
		if err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest)
		}
		rec, err := col.Create(c.Context(), attrs)
		if err != nil {
			return fail(c, err)
		}
		return response.Created(c, "Record created", rec)
	}
}

// Update PUT /:id — partial merge; absent fields are preserved.
func Update[T any](col *store.Collection[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return response.Error(c, "Invalid id", fiber.StatusBadRequest)
		}
		attrs, err := parseBody(c)
		if err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest)
		}
		rec, err := col.Update(c.Context(), id, attrs)
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Record updated", rec)
	}
}

// Delete DELETE /:id — returns the removed record.
func Delete[T any](col *store.Collection[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return response.Error(c, "Invalid id", fiber.StatusBadRequest)
		}
		rec, err := col.Delete(c.Context(), id)
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Record deleted", rec)
	}
}

// PatchField PATCH helper for single-field transitions, e.g. contract
// fulfillment or the notification read flag. Body: {"value": ...}.
func PatchField[T any](col *store.Collection[T], field string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return response.Error(c, "Invalid id", fiber.StatusBadRequest)
		}
		var body struct {
			Value interface{} `json:"value"`
		}
		if err := c.BodyParser(&body); err != nil || body.Value == nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest)
		}
		rec, err := col.PatchField(c.Context(), id, field, body.Value)
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Record updated", rec)
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func parseBody(c *fiber.Ctx) (map[string]interface{}, error) {
	attrs := map[string]interface{}{}
	if len(c.Body()) == 0 {
		return attrs, nil
	}
	if err := c.BodyParser(&attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

func fail(c *fiber.Ctx, err error) error {
	var ve *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return response.Error(c, "Record not found", fiber.StatusNotFound)
	case errors.As(err, &ve):
		return response.Error(c, ve.Error(), fiber.StatusBadRequest)
	case errors.Is(err, store.ErrUpstreamUnavailable):
		return response.Error(c, "Storage backend unavailable", fiber.StatusServiceUnavailable)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
}
