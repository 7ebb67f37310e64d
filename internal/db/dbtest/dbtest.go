// Package dbtest opens a rolled-back transaction against the database in DB_ADDR for
// repository tests. Tests are skipped when DB_ADDR is unset.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"folio/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// Tx returns a transaction with the schema applied. It is rolled back when the test ends,
// so nothing written through it is visible afterwards.
func Tx(t *testing.T) pgx.Tx {
	t.Helper()

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		t.Skip("DB_ADDR is not set")
	}

	ctx := context.Background()
	pool, err := db.New(ctx, db.Config{Addr: addr, MaxConns: 2, ConnectTimeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })

	_, err = tx.Exec(ctx, db.Schema)
	require.NoError(t, err)
	return tx
}
