package registry

import (
	"context"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// CreateCollection validates c and persists it with a new id.
func (r *Registry) CreateCollection(ctx context.Context, tc types.TenantContext, c types.Collection) (*types.Collection, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := r.store.CreateCollection(ctx, tc.Key(), &c); err != nil {
		return nil, r.fail("create collection", tc, err)
	}
	return &c, nil
}

// ListCollections returns one page of the tenant's Collections.
func (r *Registry) ListCollections(ctx context.Context, tc types.TenantContext, page types.PageRequest) (types.Page[*types.Collection], error) {
	if err := tc.Validate(); err != nil {
		return types.Page[*types.Collection]{}, err
	}
	p, err := r.store.ListCollections(ctx, tc.Key(), page)
	if err != nil {
		return p, r.fail("list collections", tc, err)
	}
	return p, nil
}

// GetCollectionByID returns the Collection with id.
func (r *Registry) GetCollectionByID(ctx context.Context, tc types.TenantContext, id string) (*types.Collection, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	c, err := r.store.GetCollection(ctx, tc.Key(), id)
	if err != nil {
		return nil, r.fail("get collection", tc, err)
	}
	return c, nil
}

// GetCollectionByHandle returns the Collection with handle.
func (r *Registry) GetCollectionByHandle(ctx context.Context, tc types.TenantContext, handle string) (*types.Collection, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	c, err := r.store.CollectionByHandle(ctx, tc.Key(), handle)
	if err != nil {
		return nil, r.fail("get collection by handle", tc, err)
	}
	return c, nil
}

// UpdateCollection replaces the Collection with id by c. Schemas keep
// pointing at it by id, so a handle change is visible to them at once.
func (r *Registry) UpdateCollection(ctx context.Context, tc types.TenantContext, id string, c types.Collection) (*types.Collection, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.CollectionID = id
	if err := r.store.UpdateCollection(ctx, tc.Key(), &c); err != nil {
		return nil, r.fail("update collection", tc, err)
	}
	return &c, nil
}
