package testdb

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/racetelemetry/laprecorder/testsupport/tcpostgres"
)

// InitTestDb returns a pool to a migrated and empty test database.
// TESTDB_URL selects an external database, TESTCONTAINERS=1 starts a container.
// Without either the test is skipped.
func InitTestDb(t testing.TB) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	var pool *pgxpool.Pool
	var err error
	switch {
	case os.Getenv("TESTDB_URL") != "":
		pool, err = tcpg.SetupExternalTestDb(os.Getenv("TESTDB_URL"))
	case os.Getenv("TESTCONTAINERS") != "":
		pool, err = tcpg.SetupTestDb(ctx)
	default:
		t.Skip("database tests need TESTDB_URL or TESTCONTAINERS=1")
	}
	if err != nil {
		t.Fatalf("setup test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := tcpg.ClearAllTables(ctx, pool); err != nil {
		t.Fatalf("clear tables: %v", err)
	}
	return pool
}
