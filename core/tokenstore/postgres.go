package tokenstore

import (
	"context"
	"embed"
	"errors"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonasv2/sessionkit/integration/database/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the goose migrations for the session_tokens table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	upsertPairSQL = `INSERT INTO session_tokens (namespace, access_token, refresh_token, token_type, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (namespace) DO UPDATE
SET access_token = EXCLUDED.access_token,
    refresh_token = EXCLUDED.refresh_token,
    token_type = EXCLUDED.token_type,
    updated_at = EXCLUDED.updated_at`
	selectPairSQL = `SELECT access_token, refresh_token, token_type FROM session_tokens WHERE namespace = $1`
	deletePairSQL = `DELETE FROM session_tokens WHERE namespace = $1`
)

// PostgresStore keeps one row per namespace. Calls join a transaction stored
// in the context with pg.WithTx.
type PostgresStore struct {
	db        DBTX
	namespace string
}

// NewPostgresStore returns a store using db. An empty namespace becomes "default".
func NewPostgresStore(db DBTX, namespace string) *PostgresStore {
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresStore{db: db, namespace: namespace}
}

func (s *PostgresStore) conn(ctx context.Context) DBTX {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Save(ctx context.Context, pair Pair) error {
	if !pair.Valid() {
		return ErrIncompletePair
	}
	_, err := s.conn(ctx).Exec(ctx, upsertPairSQL,
		s.namespace, pair.AccessToken, pair.RefreshToken, pair.TokenType)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (Pair, bool, error) {
	var p Pair
	err := s.conn(ctx).QueryRow(ctx, selectPairSQL, s.namespace).
		Scan(&p.AccessToken, &p.RefreshToken, &p.TokenType)
	if pg.IsNotFoundError(err) {
		return Pair{}, false, nil
	}
	if err != nil {
		return Pair{}, false, errors.Join(ErrLoadFailed, err)
	}
	if !p.Valid() {
		return Pair{}, false, nil
	}
	return p, true, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.conn(ctx).Exec(ctx, deletePairSQL, s.namespace); err != nil {
		return errors.Join(ErrClearFailed, err)
	}
	return nil
}
