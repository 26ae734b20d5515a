package database

import (
	"context"
	"fmt"
)

// TxManager runs a function inside a database transaction. Services depend on
// this interface rather than on *DB so unit tests can substitute a fake that
// simply invokes the function.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ TxManager = (*DB)(nil)

// InTx begins a transaction, stores it in the context as the active querier,
// and runs fn. The transaction commits when fn returns nil and rolls back on
// any error, leaving no partial state.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(SetQuerier(ctx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
