package pg_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasv2/sessionkit/integration/database/pg"
)

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(t.Context(), pg.Config{})
	require.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(t.Context(), pg.Config{ConnectionString: "::not a dsn::"})
	require.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestMigrate_NilFS(t *testing.T) {
	t.Parallel()

	err := pg.Migrate(t.Context(), nil, nil, pg.Config{}, nil)
	require.ErrorIs(t, err, pg.ErrMigrationsNotProvided)
}

func TestTxContext(t *testing.T) {
	t.Parallel()

	_, ok := pg.TxFromContext(context.Background())
	assert.False(t, ok)

	ctx := pg.WithTx(context.Background(), nil)
	_, ok = pg.TxFromContext(ctx)
	assert.False(t, ok)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFoundError(errors.Join(errors.New("wrap"), pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))
	assert.True(t, pg.IsTxClosedError(pgx.ErrTxClosed))
	assert.False(t, pg.IsDuplicateKeyError(errors.New("other")))
}

func TestConnectAndMigrate_Live(t *testing.T) {
	t.Parallel()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := pg.Config{
		ConnectionString: dsn,
		RetryAttempts:    2,
		RetryInterval:    100 * time.Millisecond,
		MigrationsTable:  "pg_test_migrations",
	}
	pool, err := pg.Connect(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Healthcheck(pool)(t.Context()))

	fsys := fstest.MapFS{
		"00001_probe.sql": &fstest.MapFile{Data: []byte(
			"-- +goose Up\nCREATE TABLE IF NOT EXISTS pg_test_probe (id int);\n" +
				"-- +goose Down\nDROP TABLE IF EXISTS pg_test_probe;\n",
		)},
	}
	require.NoError(t, pg.Migrate(t.Context(), pool, fsys, cfg, nil))
	// Second run is a no-op.
	require.NoError(t, pg.Migrate(t.Context(), pool, fsys, cfg, nil))

	var exists bool
	err = pool.QueryRow(t.Context(), "SELECT to_regclass('pg_test_probe') IS NOT NULL").Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}
