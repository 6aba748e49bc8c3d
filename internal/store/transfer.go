package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Dump records carry the tenant so one dump restores every keyspace.
type collectionDump struct {
	CollectionID string `json:"collection_id"`
	Tenant       string `json:"tenant"`
	Handle       string `json:"handle"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

type schemaDump struct {
	SchemaID     string          `json:"schema_id"`
	Tenant       string          `json:"tenant"`
	Handle       string          `json:"handle"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CollectionID string          `json:"collection_id"`
	Def          json.RawMessage `json:"def"`
}

type objectDump struct {
	ObjectID     string          `json:"object_id"`
	Tenant       string          `json:"tenant"`
	Handle       string          `json:"handle"`
	SchemaHandle string          `json:"schema_handle"`
	Data         json.RawMessage `json:"data"`
}

// TransferStats counts the records an export or import moved.
type TransferStats struct {
	Collections int `json:"collections"`
	Schemas     int `json:"schemas"`
	Objects     int `json:"objects"`
}

// Export writes every Collection, Schema and Object record, across all
// tenants, to JSONL files in dir. Each file is replaced atomically.
func (b *Backend) Export(ctx context.Context, dir string) (TransferStats, error) {
	var stats TransferStats
	if err := os.MkdirAll(dir, 0755); err != nil {
		return stats, fmt.Errorf("create export dir: %w", err)
	}

	collections, err := dumpRows(ctx, b,
		`SELECT collection_id, tenant, handle, name, description FROM collections ORDER BY collection_id`,
		func(r rowScanner) (collectionDump, error) {
			var d collectionDump
			err := r.Scan(&d.CollectionID, &d.Tenant, &d.Handle, &d.Name, &d.Description)
			return d, err
		})
	if err != nil {
		return stats, err
	}
	schemas, err := dumpRows(ctx, b,
		`SELECT schema_id, tenant, handle, name, description, collection_id, def FROM schemas ORDER BY schema_id`,
		func(r rowScanner) (schemaDump, error) {
			var d schemaDump
			var def []byte
			err := r.Scan(&d.SchemaID, &d.Tenant, &d.Handle, &d.Name, &d.Description, &d.CollectionID, &def)
			d.Def = def
			return d, err
		})
	if err != nil {
		return stats, err
	}
	objects, err := dumpRows(ctx, b,
		`SELECT object_id, tenant, handle, schema_handle, data FROM objects ORDER BY object_id`,
		func(r rowScanner) (objectDump, error) {
			var d objectDump
			var data []byte
			err := r.Scan(&d.ObjectID, &d.Tenant, &d.Handle, &d.SchemaHandle, &data)
			d.Data = data
			return d, err
		})
	if err != nil {
		return stats, err
	}

	files := []struct {
		name    string
		records []json.RawMessage
	}{
		{collectionsJSONL, collections},
		{schemasJSONL, schemas},
		{objectsJSONL, objects},
	}
	for _, f := range files {
		if err := writeJSONL(filepath.Join(dir, f.name), f.records); err != nil {
			return stats, fmt.Errorf("export %s: %w", f.name, err)
		}
	}
	return TransferStats{Collections: len(collections), Schemas: len(schemas), Objects: len(objects)}, nil
}

func dumpRows[T any](ctx context.Context, b *Backend, query string, scan func(rowScanner) (T, error)) ([]json.RawMessage, error) {
	rows, err := b.query(ctx, query)
	if err != nil {
		return nil, fault("export", err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fault("export", err)
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fault("export", err)
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("export", err)
	}
	return out, nil
}

// Import loads a directory written by Export in one transaction.
// Collections load before Schemas so foreign keys resolve. Missing files
// count as empty. Lines that are not JSON, or lack an id, tenant or
// handle, are skipped. Any constraint violation aborts the whole import.
func (b *Backend) Import(ctx context.Context, dir string) (TransferStats, error) {
	var stats TransferStats

	collections, err := readDump(filepath.Join(dir, collectionsJSONL))
	if err != nil {
		return stats, err
	}
	schemas, err := readDump(filepath.Join(dir, schemasJSONL))
	if err != nil {
		return stats, err
	}
	objects, err := readDump(filepath.Join(dir, objectsJSONL))
	if err != nil {
		return stats, err
	}

	tx, err := b.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return stats, fault("import", err)
	}
	defer tx.Rollback()

	for _, raw := range collections {
		var d collectionDump
		if json.Unmarshal(raw, &d) != nil || d.CollectionID == "" || d.Tenant == "" || d.Handle == "" {
			continue
		}
		if err := b.insertTx(ctx, tx, "collection", d.Handle,
			`INSERT INTO collections (collection_id, tenant, handle, name, description) VALUES (?, ?, ?, ?, ?)`,
			d.CollectionID, d.Tenant, d.Handle, d.Name, d.Description); err != nil {
			return stats, err
		}
		stats.Collections++
	}
	for _, raw := range schemas {
		var d schemaDump
		if json.Unmarshal(raw, &d) != nil || d.SchemaID == "" || d.Tenant == "" || d.Handle == "" {
			continue
		}
		if len(d.Def) == 0 || string(d.Def) == "null" {
			d.Def = json.RawMessage("[]")
		}
		if err := b.insertTx(ctx, tx, "schema", d.Handle,
			`INSERT INTO schemas (schema_id, tenant, handle, name, description, collection_id, def) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.SchemaID, d.Tenant, d.Handle, d.Name, d.Description, d.CollectionID, string(d.Def)); err != nil {
			return stats, err
		}
		stats.Schemas++
	}
	for _, raw := range objects {
		var d objectDump
		if json.Unmarshal(raw, &d) != nil || d.ObjectID == "" || d.Tenant == "" || d.Handle == "" {
			continue
		}
		if len(d.Data) == 0 || string(d.Data) == "null" {
			d.Data = json.RawMessage("{}")
		}
		if err := b.insertTx(ctx, tx, "object", d.Handle,
			`INSERT INTO objects (object_id, tenant, handle, schema_handle, data) VALUES (?, ?, ?, ?, ?)`,
			d.ObjectID, d.Tenant, d.Handle, d.SchemaHandle, string(d.Data)); err != nil {
			return stats, err
		}
		stats.Objects++
	}

	if err := tx.Commit(); err != nil {
		return TransferStats{}, fault("import", err)
	}
	return stats, nil
}

func (b *Backend) insertTx(ctx context.Context, tx *sql.Tx, kind, handle, query string, args ...any) error {
	if _, err := tx.ExecContext(context.WithoutCancel(ctx), b.dialect.rebind(query), args...); err != nil {
		if b.dialect.isUnique(err) {
			return types.Conflict(kind, handle)
		}
		return fault("import "+kind, err)
	}
	return nil
}

func readDump(path string) ([]json.RawMessage, error) {
	records, err := readJSONL(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return records, err
}
