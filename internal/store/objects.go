package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

const objectColumns = "object_id, handle, schema_handle, data"

// CreateObject assigns o a new id and inserts it.
func (b *Backend) CreateObject(ctx context.Context, tenant string, o *types.ObjectRecord) error {
	data, err := encodeData(o.Data)
	if err != nil {
		return fault("create object", err)
	}
	id := generateUUID()
	_, err = b.exec(ctx,
		`INSERT INTO objects (object_id, tenant, handle, schema_handle, data) VALUES (?, ?, ?, ?, ?)`,
		id, tenant, o.Handle, o.SchemaHandle, data)
	if err != nil {
		if b.dialect.isUnique(err) {
			return types.Conflict("object", o.Handle)
		}
		return fault("create object", err)
	}
	o.ObjectID = id
	return nil
}

// GetObject returns the record with id.
func (b *Backend) GetObject(ctx context.Context, tenant, id string) (*types.ObjectRecord, error) {
	row := b.queryRow(ctx,
		`SELECT `+objectColumns+` FROM objects WHERE tenant = ? AND object_id = ?`, tenant, id)
	return scanObjectRow(row, "get object", id)
}

// ObjectByHandle returns the record with handle.
func (b *Backend) ObjectByHandle(ctx context.Context, tenant, handle string) (*types.ObjectRecord, error) {
	row := b.queryRow(ctx,
		`SELECT `+objectColumns+` FROM objects WHERE tenant = ? AND handle = ?`, tenant, handle)
	return scanObjectRow(row, "get object by handle", handle)
}

// ListObjects returns one page of records under schemaHandle.
func (b *Backend) ListObjects(ctx context.Context, tenant, schemaHandle string, page types.PageRequest) (types.Page[*types.ObjectRecord], error) {
	limit, err := b.limit(page)
	if err != nil {
		return types.Page[*types.ObjectRecord]{}, err
	}
	after, err := types.DecodeCursor(page.Cursor)
	if err != nil {
		return types.Page[*types.ObjectRecord]{}, err
	}

	rows, err := b.query(ctx,
		`SELECT `+objectColumns+` FROM objects
		 WHERE tenant = ? AND schema_handle = ? AND object_id > ?
		 ORDER BY object_id LIMIT ?`, tenant, schemaHandle, after, limit+1)
	if err != nil {
		return types.Page[*types.ObjectRecord]{}, fault("list objects", err)
	}
	defer rows.Close()

	var items []*types.ObjectRecord
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return types.Page[*types.ObjectRecord]{}, fault("list objects", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return types.Page[*types.ObjectRecord]{}, fault("list objects", err)
	}
	return pageOf(items, limit, func(o *types.ObjectRecord) string { return o.ObjectID }), nil
}

// ReplaceObject overwrites handle and data of the record with o's id.
func (b *Backend) ReplaceObject(ctx context.Context, tenant string, o *types.ObjectRecord) error {
	data, err := encodeData(o.Data)
	if err != nil {
		return fault("replace object", err)
	}
	res, err := b.exec(ctx,
		`UPDATE objects SET handle = ?, data = ? WHERE tenant = ? AND object_id = ? AND schema_handle = ?`,
		o.Handle, data, tenant, o.ObjectID, o.SchemaHandle)
	if err != nil {
		if b.dialect.isUnique(err) {
			return types.Conflict("object", o.Handle)
		}
		return fault("replace object", err)
	}
	return expectOne(res, "replace object", "object", o.ObjectID)
}

// DeleteObject removes the record with id under schemaHandle and returns it.
func (b *Backend) DeleteObject(ctx context.Context, tenant, schemaHandle, id string) (*types.ObjectRecord, error) {
	row := b.db.QueryRowContext(context.WithoutCancel(ctx), b.dialect.rebind(
		`DELETE FROM objects WHERE tenant = ? AND schema_handle = ? AND object_id = ? RETURNING `+objectColumns),
		tenant, schemaHandle, id)
	return scanObjectRow(row, "delete object", id)
}

func scanObjectRow(row *sql.Row, op, key string) (*types.ObjectRecord, error) {
	o, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound("object", key)
	}
	if err != nil {
		return nil, fault(op, err)
	}
	return o, nil
}

func scanObject(r rowScanner) (*types.ObjectRecord, error) {
	o := &types.ObjectRecord{}
	var data []byte
	if err := r.Scan(&o.ObjectID, &o.Handle, &o.SchemaHandle, &data); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &o.Data); err != nil {
		return nil, err
	}
	if o.Data == nil {
		o.Data = map[string]json.RawMessage{}
	}
	return o, nil
}

func encodeData(data map[string]json.RawMessage) (string, error) {
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
