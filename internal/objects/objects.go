// Package objects implements the Object Store: CRUD for schema-shaped
// documents addressed by Collection and Schema handles.
//
// Every operation resolves its handles first and fails with ErrNotFound
// before touching data if they do not resolve. Payloads are validated
// against the Schema's def through pkg/fields. All checks precede the
// single mutating store call, so a failed operation writes nothing.
package objects

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/vellum/internal/logging"
	"github.com/mesh-intelligence/vellum/internal/resolver"
	"github.com/mesh-intelligence/vellum/pkg/fields"
	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Store is the subset of the backing store the Object Store uses.
type Store interface {
	resolver.Store
	types.ObjectTable
}

// Service serves Object CRUD.
type Service struct {
	store   Store
	resolve *resolver.Resolver
	log     *zap.Logger
}

// New returns a Service over store.
func New(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, resolve: resolver.New(store), log: log}
}

// Create validates in against the Schema meta names and persists it.
// It returns the stored document with its generated id.
func (s *Service) Create(ctx context.Context, tc types.TenantContext, meta types.ObjectMeta, in types.ObjectInput) (*types.Object, error) {
	if err := types.ValidateHandle(types.KeyHandle, in.Handle); err != nil {
		return nil, err
	}
	res, err := s.resolve.ResolveCollectionAndSchema(ctx, tc, meta)
	if err != nil {
		return nil, s.fail("create object", tc, meta, err)
	}
	decoded, err := fields.Decode(res.Schema, in.Data)
	if err != nil {
		return nil, err
	}
	if err := s.resolve.CheckObjectHandleUnique(ctx, tc, in.Handle); err != nil {
		return nil, s.fail("create object", tc, meta, err)
	}
	data, err := fields.Encode(decoded)
	if err != nil {
		return nil, err
	}

	rec := &types.ObjectRecord{Handle: in.Handle, SchemaHandle: meta.SchemaHandle, Data: data}
	if err := s.store.CreateObject(ctx, tc.Key(), rec); err != nil {
		return nil, s.fail("create object", tc, meta, err)
	}
	return &types.Object{ObjectID: rec.ObjectID, Handle: rec.Handle, SchemaHandle: rec.SchemaHandle, Fields: decoded}, nil
}

// GetByID returns the Object with id as a composite envelope.
func (s *Service) GetByID(ctx context.Context, tc types.TenantContext, meta types.ObjectMeta, id string) (*types.ObjectEnvelope, error) {
	res, err := s.resolve.ResolveCollectionAndSchema(ctx, tc, meta)
	if err != nil {
		return nil, s.fail("get object", tc, meta, err)
	}
	rec, err := s.store.GetObject(ctx, tc.Key(), id)
	if err != nil {
		return nil, s.fail("get object", tc, meta, err)
	}
	if rec.SchemaHandle != meta.SchemaHandle {
		return nil, types.NotFound("object", id)
	}
	return envelope(res, rec), nil
}

// GetByHandle returns the Object with handle as a composite envelope.
func (s *Service) GetByHandle(ctx context.Context, tc types.TenantContext, meta types.ObjectMeta, handle string) (*types.ObjectEnvelope, error) {
	res, err := s.resolve.ResolveCollectionAndSchema(ctx, tc, meta)
	if err != nil {
		return nil, s.fail("get object by handle", tc, meta, err)
	}
	rec, err := s.store.ObjectByHandle(ctx, tc.Key(), handle)
	if err != nil {
		return nil, s.fail("get object by handle", tc, meta, err)
	}
	if rec.SchemaHandle != meta.SchemaHandle {
		return nil, types.NotFound("object", handle)
	}
	return envelope(res, rec), nil
}

// GetList returns one page of the Objects stored under the Schema.
func (s *Service) GetList(ctx context.Context, tc types.TenantContext, meta types.ObjectMeta, page types.PageRequest) (types.Page[*types.Object], error) {
	res, err := s.resolve.ResolveCollectionAndSchema(ctx, tc, meta)
	if err != nil {
		return types.Page[*types.Object]{}, s.fail("list objects", tc, meta, err)
	}
	recs, err := s.store.ListObjects(ctx, tc.Key(), meta.SchemaHandle, page)
	if err != nil {
		return types.Page[*types.Object]{}, s.fail("list objects", tc, meta, err)
	}
	items := make([]*types.Object, 0, len(recs.Items))
	for _, rec := range recs.Items {
		items = append(items, load(res.Schema, rec))
	}
	return types.Page[*types.Object]{Items: items, NextCursor: recs.NextCursor}, nil
}

// UpdateByID replaces the data of the Object with id by in. The handle is
// checked for availability only when it changes.
func (s *Service) UpdateByID(ctx context.Context, tc types.TenantContext, meta types.ObjectMeta, id string, in types.ObjectInput) (*types.ObjectEnvelope, error) {
	if err := types.ValidateHandle(types.KeyHandle, in.Handle); err != nil {
		return nil, err
	}
	res, err := s.resolve.ResolveCollectionAndSchema(ctx, tc, meta)
	if err != nil {
		return nil, s.fail("update object", tc, meta, err)
	}
	stored, err := s.store.GetObject(ctx, tc.Key(), id)
	if err != nil {
		return nil, s.fail("update object", tc, meta, err)
	}
	if stored.SchemaHandle != meta.SchemaHandle {
		return nil, types.NotFound("object", id)
	}
	decoded, err := fields.Decode(res.Schema, in.Data)
	if err != nil {
		return nil, err
	}
	if in.Handle != stored.Handle {
		if err := s.resolve.CheckObjectHandleUnique(ctx, tc, in.Handle); err != nil {
			return nil, s.fail("update object", tc, meta, err)
		}
	}
	data, err := fields.Encode(decoded)
	if err != nil {
		return nil, err
	}

	rec := &types.ObjectRecord{ObjectID: id, Handle: in.Handle, SchemaHandle: meta.SchemaHandle, Data: data}
	if err := s.store.ReplaceObject(ctx, tc.Key(), rec); err != nil {
		return nil, s.fail("update object", tc, meta, err)
	}
	return &types.ObjectEnvelope{
		Object: &types.Object{ObjectID: id, Handle: rec.Handle, SchemaHandle: rec.SchemaHandle, Fields: decoded},
		Schema: res.Envelope(),
	}, nil
}

// DeleteByID removes the Object with id and returns it as it was, with
// the Schema and Collection as they are at delete time.
func (s *Service) DeleteByID(ctx context.Context, tc types.TenantContext, meta types.ObjectMeta, id string) (*types.ObjectEnvelope, error) {
	res, err := s.resolve.ResolveCollectionAndSchema(ctx, tc, meta)
	if err != nil {
		return nil, s.fail("delete object", tc, meta, err)
	}
	rec, err := s.store.DeleteObject(ctx, tc.Key(), meta.SchemaHandle, id)
	if err != nil {
		return nil, s.fail("delete object", tc, meta, err)
	}
	return envelope(res, rec), nil
}

// Form returns the widget descriptors for the Schema's def. When id is
// set, each descriptor carries that Object's current value.
func (s *Service) Form(ctx context.Context, tc types.TenantContext, meta types.ObjectMeta, id string) ([]fields.FormField, error) {
	res, err := s.resolve.ResolveCollectionAndSchema(ctx, tc, meta)
	if err != nil {
		return nil, s.fail("form", tc, meta, err)
	}
	var current types.Fields
	if id != "" {
		rec, err := s.store.GetObject(ctx, tc.Key(), id)
		if err != nil {
			return nil, s.fail("form", tc, meta, err)
		}
		if rec.SchemaHandle != meta.SchemaHandle {
			return nil, types.NotFound("object", id)
		}
		current = fields.Load(res.Schema, rec.Data)
	}
	return fields.Form(res.Schema, current), nil
}

func (s *Service) fail(op string, tc types.TenantContext, meta types.ObjectMeta, err error) error {
	logging.Failure(s.log, op, err,
		zap.String("account", tc.AccountID),
		zap.String("collection", meta.CollectionHandle),
		zap.String("schema", meta.SchemaHandle))
	return err
}

func load(schema *types.Schema, rec *types.ObjectRecord) *types.Object {
	return &types.Object{
		ObjectID:     rec.ObjectID,
		Handle:       rec.Handle,
		SchemaHandle: rec.SchemaHandle,
		Fields:       fields.Load(schema, rec.Data),
	}
}

func envelope(res resolver.Resolved, rec *types.ObjectRecord) *types.ObjectEnvelope {
	return &types.ObjectEnvelope{Object: load(res.Schema, rec), Schema: res.Envelope()}
}
