package types

import "errors"

// Config holds backend selection and parameters for opening a store.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	DSN      string `json:"dsn" yaml:"dsn"`             // Overrides the DataDir-derived SQLite path; required for postgres.
	PageSize int    `json:"page_size" yaml:"page_size"` // Default and maximum list page size; 0 means DefaultPageSize.
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultPageSize bounds every list operation when no page size is
// configured.
const DefaultPageSize = 500

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrDSNRequired     = errors.New("dsn is required for the postgres backend")
	ErrPageSizeInvalid = errors.New("page size must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendPostgres: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendPostgres && c.DSN == "" {
		return ErrDSNRequired
	}
	if c.PageSize < 0 {
		return ErrPageSizeInvalid
	}
	return nil
}

// EffectivePageSize returns PageSize, or DefaultPageSize when unset.
func (c Config) EffectivePageSize() int {
	if c.PageSize == 0 {
		return DefaultPageSize
	}
	return c.PageSize
}
