package types

import (
	"fmt"
	"strings"
)

// Grid bounds for FieldDef.Grid, measured in layout columns.
const (
	MinGrid = 1
	MaxGrid = 24
)

// Reserved object envelope keys. A FieldDef may not use any of them.
const (
	KeyID           = "id"
	KeySchema       = "schema"
	KeyHandle       = "_handle"
	KeySchemaHandle = "_schema_handle"
)

var reservedKeys = map[string]bool{
	KeyID:           true,
	KeySchema:       true,
	KeyHandle:       true,
	KeySchemaHandle: true,
}

// IsReservedKey reports whether key is taken by the object envelope.
func IsReservedKey(key string) bool {
	return reservedKeys[key]
}

// FieldDef describes one attribute of a Schema. It is persisted exactly as
// authored.
type FieldDef struct {
	Key         string    `json:"key" yaml:"key"`
	Type        FieldType `json:"type" yaml:"type"`
	Name        string    `json:"name" yaml:"name"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Helper      string    `json:"helper,omitempty" yaml:"helper,omitempty"`
	HelperImage string    `json:"helper_image,omitempty" yaml:"helper_image,omitempty"`
	Grid        int       `json:"grid,omitempty" yaml:"grid,omitempty"`
}

// Schema is a runtime-defined record shape owned by a Collection.
type Schema struct {
	SchemaID     string     `json:"id"`
	Handle       string     `json:"handle" yaml:"handle"`
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description" yaml:"description"`
	CollectionID string     `json:"collection_id" yaml:"collection_id"`
	Def          []FieldDef `json:"def" yaml:"def"`
}

// SchemaWithCollection is a Schema with its Collection inlined, as
// returned by denormalized reads.
type SchemaWithCollection struct {
	Schema
	Collection *Collection `json:"collection"`
}

// Validate checks the Schema payload: name, handle, collection_id and
// every FieldDef. FieldDef keys must be unique and must not shadow a
// reserved envelope key. Unrecognized field types are accepted; they
// degrade to the string contract.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Invalid("name", "is required")
	}
	if err := ValidateHandle("handle", s.Handle); err != nil {
		return err
	}
	if s.CollectionID == "" {
		return Invalid("collection_id", "is required")
	}
	if s.Def == nil {
		return Invalid("def", "is required")
	}
	seen := make(map[string]bool, len(s.Def))
	for i, d := range s.Def {
		field := fmt.Sprintf("def[%d]", i)
		if err := d.Validate(field); err != nil {
			return err
		}
		if seen[d.Key] {
			return Invalid(field+".key", "duplicate key %q", d.Key)
		}
		seen[d.Key] = true
	}
	return nil
}

// Validate checks a single FieldDef. field prefixes error paths.
func (d FieldDef) Validate(field string) error {
	if d.Key == "" {
		return Invalid(field+".key", "is required")
	}
	if IsReservedKey(d.Key) {
		return Invalid(field+".key", "%q is reserved", d.Key)
	}
	if d.Type == "" {
		return Invalid(field+".type", "is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return Invalid(field+".name", "is required")
	}
	if d.Grid != 0 && (d.Grid < MinGrid || d.Grid > MaxGrid) {
		return Invalid(field+".grid", "must be between %d and %d", MinGrid, MaxGrid)
	}
	return nil
}

// Field returns the FieldDef with the given key.
func (s *Schema) Field(key string) (FieldDef, bool) {
	for _, d := range s.Def {
		if d.Key == key {
			return d, true
		}
	}
	return FieldDef{}, false
}
