package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

const schemaColumns = "schema_id, handle, name, description, collection_id, def"

// rowScanner is the Scan method shared by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateSchema assigns s a new id and inserts it. The def is stored as a
// JSON document.
func (b *Backend) CreateSchema(ctx context.Context, tenant string, s *types.Schema) error {
	def, err := encodeDef(s.Def)
	if err != nil {
		return fault("create schema", err)
	}
	id := generateUUID()
	_, err = b.exec(ctx,
		`INSERT INTO schemas (schema_id, tenant, handle, name, description, collection_id, def) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, tenant, s.Handle, s.Name, s.Description, s.CollectionID, def)
	if err != nil {
		if b.dialect.isUnique(err) {
			return types.Conflict("schema", s.Handle)
		}
		return fault("create schema", err)
	}
	s.SchemaID = id
	return nil
}

// GetSchema returns the Schema with id.
func (b *Backend) GetSchema(ctx context.Context, tenant, id string) (*types.Schema, error) {
	row := b.queryRow(ctx,
		`SELECT `+schemaColumns+` FROM schemas WHERE tenant = ? AND schema_id = ?`, tenant, id)
	return scanSchemaRow(row, "get schema", id)
}

// SchemaByHandle returns the Schema with handle.
func (b *Backend) SchemaByHandle(ctx context.Context, tenant, handle string) (*types.Schema, error) {
	row := b.queryRow(ctx,
		`SELECT `+schemaColumns+` FROM schemas WHERE tenant = ? AND handle = ?`, tenant, handle)
	return scanSchemaRow(row, "get schema by handle", handle)
}

// ListSchemas returns one page of the tenant's Schemas.
func (b *Backend) ListSchemas(ctx context.Context, tenant string, page types.PageRequest) (types.Page[*types.Schema], error) {
	limit, err := b.limit(page)
	if err != nil {
		return types.Page[*types.Schema]{}, err
	}
	after, err := types.DecodeCursor(page.Cursor)
	if err != nil {
		return types.Page[*types.Schema]{}, err
	}

	rows, err := b.query(ctx,
		`SELECT `+schemaColumns+` FROM schemas
		 WHERE tenant = ? AND schema_id > ?
		 ORDER BY schema_id LIMIT ?`, tenant, after, limit+1)
	if err != nil {
		return types.Page[*types.Schema]{}, fault("list schemas", err)
	}
	defer rows.Close()

	var items []*types.Schema
	for rows.Next() {
		s, err := scanSchema(rows)
		if err != nil {
			return types.Page[*types.Schema]{}, fault("list schemas", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return types.Page[*types.Schema]{}, fault("list schemas", err)
	}
	return pageOf(items, limit, func(s *types.Schema) string { return s.SchemaID }), nil
}

// UpdateSchema overwrites every mutable column of the Schema with s's id.
func (b *Backend) UpdateSchema(ctx context.Context, tenant string, s *types.Schema) error {
	def, err := encodeDef(s.Def)
	if err != nil {
		return fault("update schema", err)
	}
	res, err := b.exec(ctx,
		`UPDATE schemas SET handle = ?, name = ?, description = ?, collection_id = ?, def = ?
		 WHERE tenant = ? AND schema_id = ?`,
		s.Handle, s.Name, s.Description, s.CollectionID, def, tenant, s.SchemaID)
	if err != nil {
		if b.dialect.isUnique(err) {
			return types.Conflict("schema", s.Handle)
		}
		return fault("update schema", err)
	}
	return expectOne(res, "update schema", "schema", s.SchemaID)
}

// DeleteSchema removes the Schema with id and returns it.
func (b *Backend) DeleteSchema(ctx context.Context, tenant, id string) (*types.Schema, error) {
	row := b.db.QueryRowContext(context.WithoutCancel(ctx), b.dialect.rebind(
		`DELETE FROM schemas WHERE tenant = ? AND schema_id = ? RETURNING `+schemaColumns), tenant, id)
	return scanSchemaRow(row, "delete schema", id)
}

func scanSchemaRow(row *sql.Row, op, key string) (*types.Schema, error) {
	s, err := scanSchema(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound("schema", key)
	}
	if err != nil {
		return nil, fault(op, err)
	}
	return s, nil
}

func scanSchema(r rowScanner) (*types.Schema, error) {
	s := &types.Schema{}
	var def []byte
	if err := r.Scan(&s.SchemaID, &s.Handle, &s.Name, &s.Description, &s.CollectionID, &def); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(def, &s.Def); err != nil {
		return nil, err
	}
	if s.Def == nil {
		s.Def = []types.FieldDef{}
	}
	return s, nil
}

// encodeDef serializes a def as a JSON string. Passing text rather than
// bytes lets PostgreSQL cast the parameter to JSONB.
func encodeDef(def []types.FieldDef) (string, error) {
	if def == nil {
		def = []types.FieldDef{}
	}
	b, err := json.Marshal(def)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
