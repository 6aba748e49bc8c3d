// Package registry manages Collections and the Schemas they own.
//
// Every payload is validated before the store is touched. Handle
// collisions are reported by the store's unique index as ErrConflict;
// the registry does not look handles up before writing them.
package registry

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/vellum/internal/logging"
	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Store is the subset of the backing store the registry uses.
type Store interface {
	types.CollectionTable
	types.SchemaTable
}

// Registry serves Collection and Schema CRUD.
type Registry struct {
	store Store
	log   *zap.Logger
}

// New returns a Registry over store.
func New(store Store, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{store: store, log: log}
}

func (r *Registry) fail(op string, tc types.TenantContext, err error) error {
	logging.Failure(r.log, op, err, zap.String("account", tc.AccountID))
	return err
}
