// Package storage selects the snapshot store backend.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/storage/badger"
	"github.com/bobmcallan/folio/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendBadger    = "badger"
	BackendSurrealDB = "surrealdb"
)

// NewSnapshotStore creates a snapshot store based on the configuration.
// Supported backends: "badger" (default), "surrealdb".
func NewSnapshotStore(ctx context.Context, logger *common.Logger, config common.StorageConfig) (interfaces.SnapshotStore, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendBadger
	}
	key := config.Key
	if key == "" {
		key = "portfolio"
	}

	switch backend {
	case BackendBadger:
		return badger.NewSnapshotStore(logger, config.Path, key)

	case BackendSurrealDB:
		return surrealdb.NewSnapshotStore(ctx, logger, config.SurrealDB, key)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: badger, surrealdb)", backend)
	}
}
