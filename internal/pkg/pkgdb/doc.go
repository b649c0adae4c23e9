// Package pkgdb opens the Postgres pool and hands out transactional handles.
//
// The pool is a *sql.DB backed by the pgx stdlib driver. Request-scoped work
// runs inside a transaction obtained from Begin; the caller owns the handle
// and must commit or roll it back.
package pkgdb
