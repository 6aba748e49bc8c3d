package types

import "context"

// CollectionTable persists Collections. Every method is scoped to one
// tenant keyspace; entities of other tenants are invisible.
type CollectionTable interface {
	// CreateCollection assigns a new id and persists c. Returns ErrConflict
	// when the handle is taken in the tenant.
	CreateCollection(ctx context.Context, tenant string, c *Collection) error

	// GetCollection returns ErrNotFound if no Collection has the id.
	GetCollection(ctx context.Context, tenant, id string) (*Collection, error)

	// CollectionByHandle returns ErrNotFound if no Collection has the
	// handle. Matching is exact and case-sensitive.
	CollectionByHandle(ctx context.Context, tenant, handle string) (*Collection, error)

	// ListCollections returns Collections in ascending id order.
	ListCollections(ctx context.Context, tenant string, page PageRequest) (Page[*Collection], error)

	// UpdateCollection replaces the stored record with c.
	UpdateCollection(ctx context.Context, tenant string, c *Collection) error
}

// SchemaTable persists Schemas.
type SchemaTable interface {
	CreateSchema(ctx context.Context, tenant string, s *Schema) error
	GetSchema(ctx context.Context, tenant, id string) (*Schema, error)
	SchemaByHandle(ctx context.Context, tenant, handle string) (*Schema, error)
	ListSchemas(ctx context.Context, tenant string, page PageRequest) (Page[*Schema], error)
	UpdateSchema(ctx context.Context, tenant string, s *Schema) error

	// DeleteSchema removes the Schema and returns it as it was. Objects
	// that reference the Schema's handle are left in place.
	DeleteSchema(ctx context.Context, tenant, id string) (*Schema, error)
}

// ObjectTable persists Object records.
type ObjectTable interface {
	CreateObject(ctx context.Context, tenant string, o *ObjectRecord) error
	GetObject(ctx context.Context, tenant, id string) (*ObjectRecord, error)
	ObjectByHandle(ctx context.Context, tenant, handle string) (*ObjectRecord, error)

	// ListObjects returns records whose schema handle equals schemaHandle.
	ListObjects(ctx context.Context, tenant, schemaHandle string, page PageRequest) (Page[*ObjectRecord], error)

	// ReplaceObject overwrites handle and data of the record with o's id,
	// provided it still belongs to o.SchemaHandle.
	ReplaceObject(ctx context.Context, tenant string, o *ObjectRecord) error

	// DeleteObject removes the record with the id under schemaHandle and
	// returns it as it was.
	DeleteObject(ctx context.Context, tenant, schemaHandle, id string) (*ObjectRecord, error)
}

// Store is the full backing store.
type Store interface {
	CollectionTable
	SchemaTable
	ObjectTable

	// Close releases the store's resources.
	Close() error
}
