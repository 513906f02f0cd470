// Package postgres implements the persistence gateway: one repository per
// entity kind over pgx, plus the transactional unit of work used by checkout.
package postgres

import (
	"context"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shoply/db"
	"github.com/xenking/shoply/internal/domain/errs"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx, so every
// repository can run either directly on the pool or inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database config")
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create connection pool")
	}
	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

// Postgres error codes that signal a lost race rather than a broken query.
const (
	codeLockNotAvailable    = "55P03"
	codeSerializationFailed = "40001"
	codeDeadlockDetected    = "40P01"
)

// storageErr maps a pgx error to the domain taxonomy: lock and serialization
// failures become ConcurrencyConflict, everything else a PersistenceError.
func storageErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeSerializationFailed, codeDeadlockDetected:
			return errors.Wrap(errs.ErrConcurrencyConflict, op)
		}
	}
	return errs.Persistence(op, err)
}
