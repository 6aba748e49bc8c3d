package types

import (
	"encoding/base64"
)

// PageRequest asks for one page of a list. A zero Limit means the store's
// default page size; Cursor is the NextCursor of the previous page.
type PageRequest struct {
	Limit  int
	Cursor string
}

// Page is one page of a list. NextCursor is empty on the last page.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// EncodeCursor turns the last id of a page into an opaque cursor.
func EncodeCursor(lastID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(lastID))
}

// DecodeCursor reverses EncodeCursor. An empty cursor decodes to "".
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil || len(b) == 0 {
		return "", Invalid("cursor", "is malformed")
	}
	return string(b), nil
}
