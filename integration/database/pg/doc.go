// Package pg provides PostgreSQL connection management with retry, goose
// migrations and health checking on top of pgx.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrationsFS, cfg, log); err != nil {
//		return err
//	}
//
// Migrate bridges the pgx pool to database/sql for goose and runs the
// migrations found at the root of the given fs.FS. Callers usually pass an
// embedded directory narrowed with fs.Sub.
//
// WithTx and TxFromContext carry a pgx.Tx through a context so repositories
// can join an outer transaction.
package pg
