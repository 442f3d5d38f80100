// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// SnapshotInfo describes the stored snapshot without decoding it.
type SnapshotInfo struct {
	Key     string    `json:"key"`
	RunID   string    `json:"run_id"`
	SavedAt time.Time `json:"saved_at"`
}

// SnapshotStore persists the latest portfolio snapshot. Each save fully
// replaces the previous snapshot under the configured key.
type SnapshotStore interface {
	SavePortfolio(ctx context.Context, p *models.Portfolio, runID string) error

	// GetPortfolio returns nil, nil when nothing has been saved yet.
	GetPortfolio(ctx context.Context) (*models.Portfolio, error)

	// GetSnapshotInfo returns nil, nil when nothing has been saved yet.
	GetSnapshotInfo(ctx context.Context) (*SnapshotInfo, error)

	Close() error
}
