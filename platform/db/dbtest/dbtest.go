// Package dbtest opens the Postgres database used by repository tests.
// Tests skip unless TEST_DATABASE_URL points at a disposable database.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/migrations"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// EnvURL names the variable holding the test database DSN.
const EnvURL = "TEST_DATABASE_URL"

// migrateLock serializes goose runs across test packages sharing a database.
const migrateLock = 7_240_117

// Open connects to the test database and applies every migration.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skip(EnvURL + " not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrateLock)
	require.NoError(t, err)
	defer func() { _, _ = conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, migrateLock) }()

	require.NoError(t, db.RunMigrations(ctx, pool, migrations.FS))
	return pool
}

// SeedFranchise inserts a franchise; a nil percentage leaves it unset.
func SeedFranchise(t testing.TB, pool *pgxpool.Pool, percentage *float64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO franchises (id, name, commission_percentage) VALUES ($1, $2, $3)`,
		id, "franchise-"+id.String()[:8], percentage,
	)
	require.NoError(t, err)
	return id
}
