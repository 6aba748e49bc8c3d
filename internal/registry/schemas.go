package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Create validates s and persists it under its collection_id. The
// Collection must exist.
func (r *Registry) Create(ctx context.Context, tc types.TenantContext, s types.Schema) (*types.Schema, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if _, err := r.store.GetCollection(ctx, tc.Key(), s.CollectionID); err != nil {
		return nil, r.fail("create schema", tc, err)
	}
	if err := r.store.CreateSchema(ctx, tc.Key(), &s); err != nil {
		return nil, r.fail("create schema", tc, err)
	}
	return &s, nil
}

// List returns one page of the tenant's Schemas in ascending id order.
func (r *Registry) List(ctx context.Context, tc types.TenantContext, page types.PageRequest) (types.Page[*types.Schema], error) {
	if err := tc.Validate(); err != nil {
		return types.Page[*types.Schema]{}, err
	}
	p, err := r.store.ListSchemas(ctx, tc.Key(), page)
	if err != nil {
		return p, r.fail("list schemas", tc, err)
	}
	return p, nil
}

// GetByID returns the Schema with id and its Collection.
func (r *Registry) GetByID(ctx context.Context, tc types.TenantContext, id string) (*types.SchemaWithCollection, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	s, err := r.store.GetSchema(ctx, tc.Key(), id)
	if err != nil {
		return nil, r.fail("get schema", tc, err)
	}
	return r.inline(ctx, tc, s)
}

// GetByHandle returns the Schema with handle and its Collection.
func (r *Registry) GetByHandle(ctx context.Context, tc types.TenantContext, handle string) (*types.SchemaWithCollection, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	s, err := r.store.SchemaByHandle(ctx, tc.Key(), handle)
	if err != nil {
		return nil, r.fail("get schema by handle", tc, err)
	}
	return r.inline(ctx, tc, s)
}

// UpdateByID replaces the Schema with id by s. Objects stored under the
// old def are left as they are; reads surface only fields the new def
// declares.
func (r *Registry) UpdateByID(ctx context.Context, tc types.TenantContext, id string, s types.Schema) (*types.Schema, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if _, err := r.store.GetCollection(ctx, tc.Key(), s.CollectionID); err != nil {
		return nil, r.fail("update schema", tc, err)
	}
	s.SchemaID = id
	if err := r.store.UpdateSchema(ctx, tc.Key(), &s); err != nil {
		return nil, r.fail("update schema", tc, err)
	}
	return &s, nil
}

// DeleteByID removes the Schema with id and returns it. Its Objects are
// not deleted; they become unreachable through the Schema's handle.
func (r *Registry) DeleteByID(ctx context.Context, tc types.TenantContext, id string) (*types.Schema, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	s, err := r.store.DeleteSchema(ctx, tc.Key(), id)
	if err != nil {
		return nil, r.fail("delete schema", tc, err)
	}
	r.log.Info("schema deleted", zap.String("schema_id", s.SchemaID), zap.String("handle", s.Handle))
	return s, nil
}

func (r *Registry) inline(ctx context.Context, tc types.TenantContext, s *types.Schema) (*types.SchemaWithCollection, error) {
	c, err := r.store.GetCollection(ctx, tc.Key(), s.CollectionID)
	if err != nil {
		return nil, r.fail("inline collection", tc, err)
	}
	return &types.SchemaWithCollection{Schema: *s, Collection: c}, nil
}
