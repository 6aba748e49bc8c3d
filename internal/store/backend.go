// Package store implements the relational backing store for Vellum.
// SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) share one set of
// queries; the dialect rewrites placeholders and classifies constraint
// errors. The schema is owned by the embedded golang-migrate migrations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// dbFile is the SQLite database file name inside DataDir.
const dbFile = "vellum.db"

// Backend implements types.Store on database/sql.
type Backend struct {
	db       *sql.DB
	dialect  dialect
	pageSize int
}

var _ types.Store = (*Backend)(nil)

// Open validates cfg, applies pending migrations and returns a ready
// Backend. For SQLite, DataDir is created if it does not exist.
func Open(ctx context.Context, cfg types.Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := dialectFor(cfg.Backend)
	if err != nil {
		return nil, err
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	m, err := NewMigrator(cfg)
	if err != nil {
		return nil, err
	}
	if err := m.Up(); err != nil {
		m.Close()
		return nil, err
	}
	if err := m.Close(); err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.configure(db)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Backend{db: db, dialect: d, pageSize: cfg.EffectivePageSize()}, nil
}

// DSN returns the connection string for cfg. An explicit DSN wins; for
// SQLite the default is DataDir/vellum.db with a busy timeout and foreign
// keys on.
func DSN(cfg types.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Backend != types.BackendSQLite {
		return "", types.ErrDSNRequired
	}
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, dbFile)
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
}

// Ping reports whether the database answers.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close releases the connection pool. Close is idempotent.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// PageSize is the default and maximum number of items per list page.
func (b *Backend) PageSize() int {
	return b.pageSize
}

// limit resolves the effective page size for p.
func (b *Backend) limit(p types.PageRequest) (int, error) {
	switch {
	case p.Limit < 0:
		return 0, types.Invalid("limit", "must not be negative")
	case p.Limit == 0 || p.Limit > b.pageSize:
		return b.pageSize, nil
	default:
		return p.Limit, nil
	}
}

// exec runs a mutating statement. Mutations are not abandoned when the
// caller's context is cancelled mid-flight.
func (b *Backend) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return b.db.ExecContext(context.WithoutCancel(ctx), b.dialect.rebind(query), args...)
}

func (b *Backend) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return b.db.QueryContext(ctx, b.dialect.rebind(query), args...)
}

func (b *Backend) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return b.db.QueryRowContext(ctx, b.dialect.rebind(query), args...)
}

// fault wraps a driver error as a store fault.
func fault(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrStoreFault, op, err)
}

// generateUUID generates a new UUID v7 for entity IDs. v7 ids sort by
// creation time, which list ordering relies on.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// pageOf trims a limit+1 result to limit items and derives the cursor.
func pageOf[T any](items []T, limit int, idOf func(T) string) types.Page[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) <= limit {
		return types.Page[T]{Items: items}
	}
	items = items[:limit]
	return types.Page[T]{Items: items, NextCursor: types.EncodeCursor(idOf(items[limit-1]))}
}
