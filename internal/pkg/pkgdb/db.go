package pkgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

const driverName = "pgx"

// ErrMissingDSN is returned by Open when no DSN is configured.
var ErrMissingDSN = errors.New("database dsn is required")

// Options configures the connection pool.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	if opts.DSN == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open(driverName, opts.DSN)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Beginner starts transactions. *sql.DB and *sql.Conn satisfy it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Begin starts a transaction at the given isolation level. The transaction is
// rolled back by database/sql if ctx ends before Commit.
func Begin(ctx context.Context, b Beginner, level sql.IsolationLevel) (*sql.Tx, error) {
	return b.BeginTx(ctx, &sql.TxOptions{Isolation: level})
}

// Finish commits tx when err is nil and rolls it back otherwise. A transaction
// that is already done is not an error.
func Finish(tx *sql.Tx, err error) error {
	if err == nil {
		if cerr := tx.Commit(); cerr != nil && !errors.Is(cerr, sql.ErrTxDone) {
			return cerr
		}
		return nil
	}

	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		return rerr
	}
	return nil
}

type txContextKey struct{}

// WithTx stores tx in ctx so that stores read through the request's
// transaction instead of taking a second pool connection.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction stored by WithTx.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}
