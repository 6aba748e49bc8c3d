// Package store provides the public factory for Vellum backing stores.
// It exposes Open while keeping the implementation internal.
package store

import (
	"context"

	"github.com/mesh-intelligence/vellum/internal/store"
	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Open validates cfg, applies pending schema migrations and returns a
// ready store. The caller must Close it.
//
// Example:
//
//	s, err := store.Open(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".vellum-db",
//	})
//	defer s.Close()
func Open(ctx context.Context, cfg types.Config) (types.Store, error) {
	b, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}
