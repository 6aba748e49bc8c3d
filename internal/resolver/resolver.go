// Package resolver turns Collection, Schema and Object handles into
// entities. It checks existence before reads and handle availability
// before writes. Nothing is cached; every call queries the store.
package resolver

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Store is the subset of the backing store the resolver reads.
type Store interface {
	CollectionByHandle(ctx context.Context, tenant, handle string) (*types.Collection, error)
	SchemaByHandle(ctx context.Context, tenant, handle string) (*types.Schema, error)
	ObjectByHandle(ctx context.Context, tenant, handle string) (*types.ObjectRecord, error)
}

// Resolver resolves handles within one tenant per call.
type Resolver struct {
	store Store
}

// New returns a Resolver reading from store.
func New(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolved is a Collection and one of its Schemas.
type Resolved struct {
	Collection *types.Collection
	Schema     *types.Schema
}

// Envelope inlines the Collection into the Schema.
func (r Resolved) Envelope() *types.SchemaWithCollection {
	return &types.SchemaWithCollection{Schema: *r.Schema, Collection: r.Collection}
}

// ResolveCollectionAndSchema resolves both handles of meta. It returns
// ErrNotFound if either handle misses or if the Schema does not belong to
// the Collection.
func (r *Resolver) ResolveCollectionAndSchema(ctx context.Context, tc types.TenantContext, meta types.ObjectMeta) (Resolved, error) {
	if err := tc.Validate(); err != nil {
		return Resolved{}, err
	}
	c, err := r.store.CollectionByHandle(ctx, tc.Key(), meta.CollectionHandle)
	if err != nil {
		return Resolved{}, err
	}
	s, err := r.store.SchemaByHandle(ctx, tc.Key(), meta.SchemaHandle)
	if err != nil {
		return Resolved{}, err
	}
	if s.CollectionID != c.CollectionID {
		return Resolved{}, types.NotFound("schema", meta.CollectionHandle+"/"+meta.SchemaHandle)
	}
	return Resolved{Collection: c, Schema: s}, nil
}

// CheckObjectHandleUnique returns ErrConflict if any Object in the tenant
// holds handle.
func (r *Resolver) CheckObjectHandleUnique(ctx context.Context, tc types.TenantContext, handle string) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	_, err := r.store.ObjectByHandle(ctx, tc.Key(), handle)
	switch {
	case err == nil:
		return types.Conflict("object", handle)
	case errors.Is(err, types.ErrNotFound):
		return nil
	default:
		return err
	}
}
