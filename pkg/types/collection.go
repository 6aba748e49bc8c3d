package types

import "strings"

// Collection groups Schemas under one tenant-unique handle.
type Collection struct {
	CollectionID string `json:"id"`
	Handle       string `json:"handle" yaml:"handle"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
}

// Validate checks the fields a Collection payload must carry. The id is
// not checked; create assigns it and update takes it from the caller.
func (c *Collection) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", "is required")
	}
	return ValidateHandle("handle", c.Handle)
}
