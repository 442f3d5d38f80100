package surrealdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/folio/internal/common"
	tcommon "github.com/bobmcallan/folio/tests/common"
)

// testDB connects to a per-test database in the shared container.
func testDB(t *testing.T) *surrealdb.DB {
	t.Helper()
	db, err := Connect(context.Background(), tcommon.SurrealDBConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })
	return db
}

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
