package store

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Field maps one JSON attribute onto a column. Int and JSON request value
// coercion from the generic JSON decoding (float64 / map) to what the
// column driver expects.
type Field struct {
	Column   string
	Required bool
	Default  interface{}
	Int      bool
	JSON     bool
}

// Schema is the per-entity field whitelist. Attributes outside Fields are
// silently ignored on create and update, matching a partial-merge contract
// where clients may post extra presentation-only keys.
type Schema struct {
	Kind   string // singular entity name, e.g. "farmer"
	Table  string
	Event  string // channel stem, e.g. "allocation" -> "allocation_created"
	Fields map[string]Field
}

// Apply builds the column map for a create: whitelisted attributes, then
// defaults for absent ones, failing on a missing required field.
func (s Schema) Apply(attrs map[string]interface{}) (map[string]interface{}, error) {
	cols := make(map[string]interface{}, len(s.Fields))
	for name, f := range s.Fields {
		v, ok := attrs[name]
		if ok && v != nil {
			cols[f.Column] = coerce(f, v)
			continue
		}
		if f.Default != nil {
			cols[f.Column] = f.Default
			continue
		}
		if f.Required {
			return nil, missingField(name)
		}
	}
	return cols, nil
}

// Merge builds the column map for a partial update: whitelisted attributes
// only, no defaults, no required checks.
func (s Schema) Merge(attrs map[string]interface{}) map[string]interface{} {
	cols := make(map[string]interface{}, len(attrs))
	for name, f := range s.Fields {
		if v, ok := attrs[name]; ok && v != nil {
			cols[f.Column] = coerce(f, v)
		}
	}
	return cols
}

func coerce(f Field, v interface{}) interface{} {
	if f.Int {
		if fv, ok := v.(float64); ok {
			return int64(fv)
		}
	}
	if f.JSON {
		if _, ok := v.(datatypes.JSON); !ok {
			if b, err := json.Marshal(v); err == nil {
				return datatypes.JSON(b)
			}
		}
	}
	return v
}
