package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx.
// Repositories run all SQL through the Querier found in the request context,
// so the same repository code executes inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type contextKey string

const (
	// QuerierKey is the context key for storing the active database querier.
	QuerierKey contextKey = "querier"
)

// GetQuerier retrieves the active querier from context.
// Returns nil and false if not present.
func GetQuerier(ctx context.Context) (Querier, bool) {
	q, ok := ctx.Value(QuerierKey).(Querier)
	return q, ok
}

// SetQuerier stores the active querier in context.
func SetQuerier(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, QuerierKey, q)
}

// WithPool returns a context whose querier is the connection pool.
// Use this for reads and single-statement writes outside a transaction.
func (db *DB) WithPool(ctx context.Context) context.Context {
	return SetQuerier(ctx, db.Pool)
}
