package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/models"
	tcommon "github.com/bobmcallan/folio/tests/common"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := NewSnapshotStoreWithDB(context.Background(), testDB(t), testLogger(), "portfolio")
	require.NoError(t, err)
	return s
}

func snapshot(name string, value float64) *models.Portfolio {
	return &models.Portfolio{
		InvestorName:   name,
		TotalValue:     value,
		Holdings:       []models.Holding{{SchemeName: "Alpha Equity", Folio: "A/1", CurrentValue: value}},
		AggregationMap: map[string]models.AggregationEntry{},
		BrokerInfo:     map[string]models.BrokerSummary{},
		LastUpdated:    time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}
}

func TestSnapshotStore_Empty(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetPortfolio(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSnapshotStore_SaveAndReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePortfolio(ctx, snapshot("FIRST", 100), "run-1"))
	require.NoError(t, s.SavePortfolio(ctx, snapshot("SECOND", 200), "run-2"))

	got, err := s.GetPortfolio(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SECOND", got.InvestorName)
	assert.Equal(t, 200.0, got.TotalValue)
	require.Len(t, got.Holdings, 1)
	assert.Equal(t, "A/1", got.Holdings[0].Folio)

	info, err := s.GetSnapshotInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "run-2", info.RunID)
}

func TestNewSnapshotStore_FromConfig(t *testing.T) {
	ctx := context.Background()
	s, err := NewSnapshotStore(ctx, testLogger(), tcommon.SurrealDBConfig(t), "portfolio")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.SavePortfolio(ctx, snapshot("CONFIGURED", 50), "run-1"))
	got, err := s.GetPortfolio(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "CONFIGURED", got.InvestorName)
}
