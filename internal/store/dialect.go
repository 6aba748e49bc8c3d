package store

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// dialect captures what differs between the SQL backends. Queries are
// written with ? placeholders.
type dialect struct {
	name      string
	driver    string
	numbered  bool // Rewrite ? to $1, $2, ...
	configure func(*sql.DB)
	isUnique  func(error) bool
}

func dialectFor(backend string) (dialect, error) {
	switch backend {
	case types.BackendSQLite:
		return dialect{
			name:   types.BackendSQLite,
			driver: "sqlite",
			configure: func(db *sql.DB) {
				// One writer at a time; contention waits on busy_timeout.
				db.SetMaxOpenConns(1)
			},
			isUnique: sqliteUnique,
		}, nil
	case types.BackendPostgres:
		return dialect{
			name:     types.BackendPostgres,
			driver:   "postgres",
			numbered: true,
			configure: func(db *sql.DB) {
				db.SetMaxOpenConns(25)
				db.SetMaxIdleConns(5)
			},
			isUnique: postgresUnique,
		}, nil
	default:
		return dialect{}, types.ErrBackendUnknown
	}
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func sqliteUnique(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

func postgresUnique(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == "23505"
}
