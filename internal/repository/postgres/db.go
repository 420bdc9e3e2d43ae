// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type DB struct {
	pool DBTX
}

func NewDB(pool DBTX) *DB {
	return &DB{pool: pool}
}

// Ping is used by the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	var one int
	return db.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func newID() string {
	return ulid.Make().String()
}

// ========== Default-filling helpers ==========
// Every column is scanned nullable; these collapse NULL into the domain default.

func str(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func strOr(ns sql.NullString, fallback string) string {
	if ns.Valid && ns.String != "" {
		return ns.String
	}
	return fallback
}

func integer(ni sql.NullInt64) int {
	if ni.Valid {
		return int(ni.Int64)
	}
	return 0
}

func float(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}

// timeOr resolves an absent timestamp to now, the read-time clock value.
func timeOr(nt sql.NullTime, now time.Time) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return now
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
