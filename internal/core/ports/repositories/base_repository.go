package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes the storage layer's unit-of-work boundary.
// Reconcilers use it to apply a whole snapshot batch all-or-nothing.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}
