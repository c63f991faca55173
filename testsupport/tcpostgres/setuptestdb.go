package tcpostgres

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/racetelemetry/laprecorder/pkg/db/migrate"
	database "github.com/racetelemetry/laprecorder/pkg/db/postgres"
)

// SetupTestDb starts (or reuses) the test container and returns a pool to the
// migrated database. TESTDB_IMAGE overrides the postgres image.
func SetupTestDb(ctx context.Context) (*pgxpool.Pool, error) {
	opts := []PostgresContainerOption{WithName("laprecorder-test")}
	if image := os.Getenv("TESTDB_IMAGE"); image != "" {
		opts = append(opts, WithImage(image))
	}
	container, err := SetupPostgres(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}
	dbURL, err := container.ConnString(ctx)
	if err != nil {
		return nil, err
	}
	return setupPool(dbURL)
}

// SetupExternalTestDb uses the database given by dbURL.
func SetupExternalTestDb(dbURL string) (*pgxpool.Pool, error) {
	return setupPool(dbURL)
}

func setupPool(dbURL string) (*pgxpool.Pool, error) {
	if err := migrate.MigrateDb(dbURL); err != nil {
		return nil, fmt.Errorf("migrate test database: %w", err)
	}
	return database.InitWithUrl(dbURL)
}

// ClearAllTables removes the rows of every table written by the recorder.
func ClearAllTables(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "truncate table lap restart identity")
	return err
}
