package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// snapshotRecord holds the portfolio as its JSON document so the stored
// bytes match what the API serves.
type snapshotRecord struct {
	Key      string
	Document []byte
	RunID    string
	SavedAt  time.Time
}

// SnapshotStore implements interfaces.SnapshotStore on BadgerHold.
type SnapshotStore struct {
	db     *badgerhold.Store
	key    string
	logger *common.Logger
}

// NewSnapshotStore opens the store at path and keeps snapshots under key.
func NewSnapshotStore(logger *common.Logger, path, key string) (*SnapshotStore, error) {
	db, err := openDB(logger, path)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{db: db, key: key, logger: logger}, nil
}

func (s *SnapshotStore) SavePortfolio(_ context.Context, p *models.Portfolio, runID string) error {
	if p == nil {
		return errors.New("cannot save nil portfolio")
	}
	doc, err := p.MarshalDocument()
	if err != nil {
		return fmt.Errorf("failed to encode portfolio: %w", err)
	}

	rec := snapshotRecord{Key: s.key, Document: doc, RunID: runID, SavedAt: time.Now().UTC()}
	if err := s.db.Upsert(s.key, rec); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	s.logger.Debug().Str("key", s.key).Str("run_id", runID).Int("bytes", len(doc)).Msg("Portfolio snapshot saved")
	return nil
}

func (s *SnapshotStore) GetPortfolio(_ context.Context) (*models.Portfolio, error) {
	rec, err := s.get()
	if err != nil || rec == nil {
		return nil, err
	}
	p, err := models.UnmarshalDocument(rec.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to decode portfolio snapshot: %w", err)
	}
	return p, nil
}

func (s *SnapshotStore) GetSnapshotInfo(_ context.Context) (*interfaces.SnapshotInfo, error) {
	rec, err := s.get()
	if err != nil || rec == nil {
		return nil, err
	}
	return &interfaces.SnapshotInfo{Key: rec.Key, RunID: rec.RunID, SavedAt: rec.SavedAt}, nil
}

func (s *SnapshotStore) get() (*snapshotRecord, error) {
	var rec snapshotRecord
	if err := s.db.Get(s.key, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio snapshot '%s': %w", s.key, err)
	}
	return &rec, nil
}

func (s *SnapshotStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Compile-time check
var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)
