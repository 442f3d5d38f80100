// Package badger keeps the portfolio snapshot in an embedded BadgerHold
// database, one record per snapshot key.
package badger

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/folio/internal/common"
)

// openDB opens (creating if needed) the database directory at path. Writes
// are synced so a snapshot is on disk once SavePortfolio returns.
func openDB(logger *common.Logger, path string) (*badgerhold.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("badger storage path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.SyncWrites = true
	options.Logger = nil

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database %s: %w", path, err)
	}
	logger.Debug().Str("path", path).Msg("Snapshot database opened")
	return db, nil
}
