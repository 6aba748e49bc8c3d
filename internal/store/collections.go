package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

const collectionColumns = "collection_id, handle, name, description"

// CreateCollection assigns c a new id and inserts it.
func (b *Backend) CreateCollection(ctx context.Context, tenant string, c *types.Collection) error {
	id := generateUUID()
	_, err := b.exec(ctx,
		`INSERT INTO collections (collection_id, tenant, handle, name, description) VALUES (?, ?, ?, ?, ?)`,
		id, tenant, c.Handle, c.Name, c.Description)
	if err != nil {
		if b.dialect.isUnique(err) {
			return types.Conflict("collection", c.Handle)
		}
		return fault("create collection", err)
	}
	c.CollectionID = id
	return nil
}

// GetCollection returns the Collection with id.
func (b *Backend) GetCollection(ctx context.Context, tenant, id string) (*types.Collection, error) {
	row := b.queryRow(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE tenant = ? AND collection_id = ?`, tenant, id)
	return scanCollection(row, "get collection", id)
}

// CollectionByHandle returns the Collection with handle.
func (b *Backend) CollectionByHandle(ctx context.Context, tenant, handle string) (*types.Collection, error) {
	row := b.queryRow(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE tenant = ? AND handle = ?`, tenant, handle)
	return scanCollection(row, "get collection by handle", handle)
}

// ListCollections returns one page of the tenant's Collections.
func (b *Backend) ListCollections(ctx context.Context, tenant string, page types.PageRequest) (types.Page[*types.Collection], error) {
	limit, err := b.limit(page)
	if err != nil {
		return types.Page[*types.Collection]{}, err
	}
	after, err := types.DecodeCursor(page.Cursor)
	if err != nil {
		return types.Page[*types.Collection]{}, err
	}

	rows, err := b.query(ctx,
		`SELECT `+collectionColumns+` FROM collections
		 WHERE tenant = ? AND collection_id > ?
		 ORDER BY collection_id LIMIT ?`, tenant, after, limit+1)
	if err != nil {
		return types.Page[*types.Collection]{}, fault("list collections", err)
	}
	defer rows.Close()

	var items []*types.Collection
	for rows.Next() {
		c := &types.Collection{}
		if err := rows.Scan(&c.CollectionID, &c.Handle, &c.Name, &c.Description); err != nil {
			return types.Page[*types.Collection]{}, fault("list collections", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return types.Page[*types.Collection]{}, fault("list collections", err)
	}
	return pageOf(items, limit, func(c *types.Collection) string { return c.CollectionID }), nil
}

// UpdateCollection overwrites handle, name and description of the
// Collection with c's id.
func (b *Backend) UpdateCollection(ctx context.Context, tenant string, c *types.Collection) error {
	res, err := b.exec(ctx,
		`UPDATE collections SET handle = ?, name = ?, description = ? WHERE tenant = ? AND collection_id = ?`,
		c.Handle, c.Name, c.Description, tenant, c.CollectionID)
	if err != nil {
		if b.dialect.isUnique(err) {
			return types.Conflict("collection", c.Handle)
		}
		return fault("update collection", err)
	}
	return expectOne(res, "update collection", "collection", c.CollectionID)
}

func scanCollection(row *sql.Row, op, key string) (*types.Collection, error) {
	c := &types.Collection{}
	err := row.Scan(&c.CollectionID, &c.Handle, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound("collection", key)
	}
	if err != nil {
		return nil, fault(op, err)
	}
	return c, nil
}

// expectOne maps a zero-row mutation to ErrNotFound.
func expectOne(res sql.Result, op, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fault(op, err)
	}
	if n == 0 {
		return types.NotFound(kind, key)
	}
	return nil
}
