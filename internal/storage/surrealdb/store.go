// Package surrealdb provides the SurrealDB snapshot store.
package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const snapshotTable = "portfolio_snapshot"

// snapshotRecord is the SurrealDB record shape for the snapshot table. The
// portfolio is kept as its JSON text.
type snapshotRecord struct {
	Key      string    `json:"key"`
	Document string    `json:"document"`
	RunID    string    `json:"run_id"`
	SavedAt  time.Time `json:"saved_at"`
}

// SnapshotStore implements interfaces.SnapshotStore using SurrealDB.
type SnapshotStore struct {
	db     *surrealdb.DB
	key    string
	logger *common.Logger
}

// Connect opens a SurrealDB connection, signs in and selects the namespace
// and database.
func Connect(ctx context.Context, cfg common.SurrealDBConfig) (*surrealdb.DB, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}
	return db, nil
}

// NewSnapshotStore connects using cfg and keeps snapshots under key.
func NewSnapshotStore(ctx context.Context, logger *common.Logger, cfg common.SurrealDBConfig, key string) (*SnapshotStore, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s, err := NewSnapshotStoreWithDB(ctx, db, logger, key)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB snapshot store initialized")
	return s, nil
}

// NewSnapshotStoreWithDB uses an existing connection.
func NewSnapshotStoreWithDB(ctx context.Context, db *surrealdb.DB, logger *common.Logger, key string) (*SnapshotStore, error) {
	// SurrealDB v3 errors on selecting from a table that was never defined
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", snapshotTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", snapshotTable, err)
	}
	return &SnapshotStore{db: db, key: key, logger: logger}, nil
}

func (s *SnapshotStore) rid() surrealmodels.RecordID {
	return surrealmodels.NewRecordID(snapshotTable, s.key)
}

func (s *SnapshotStore) SavePortfolio(ctx context.Context, p *models.Portfolio, runID string) error {
	if p == nil {
		return errors.New("cannot save nil portfolio")
	}
	doc, err := p.MarshalDocument()
	if err != nil {
		return fmt.Errorf("failed to encode portfolio: %w", err)
	}

	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid": s.rid(),
		"record": snapshotRecord{
			Key:      s.key,
			Document: string(doc),
			RunID:    runID,
			SavedAt:  time.Now().UTC(),
		},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]snapshotRecord](ctx, s.db, sql, vars)
		if err == nil {
			s.logger.Debug().Str("key", s.key).Str("run_id", runID).Int("bytes", len(doc)).Msg("Portfolio snapshot saved")
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save portfolio after retries: %w", lastErr)
}

func (s *SnapshotStore) GetPortfolio(ctx context.Context) (*models.Portfolio, error) {
	rec, err := s.get(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	p, err := models.UnmarshalDocument([]byte(rec.Document))
	if err != nil {
		return nil, fmt.Errorf("failed to decode portfolio snapshot: %w", err)
	}
	return p, nil
}

func (s *SnapshotStore) GetSnapshotInfo(ctx context.Context) (*interfaces.SnapshotInfo, error) {
	rec, err := s.get(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	return &interfaces.SnapshotInfo{Key: rec.Key, RunID: rec.RunID, SavedAt: rec.SavedAt}, nil
}

func (s *SnapshotStore) get(ctx context.Context) (*snapshotRecord, error) {
	rec, err := surrealdb.Select[snapshotRecord](ctx, s.db, s.rid())
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select portfolio snapshot '%s': %w", s.key, err)
	}
	if rec == nil || rec.Document == "" {
		return nil, nil
	}
	return rec, nil
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

// Compile-time check
var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)
