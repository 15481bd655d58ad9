package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/mintflow/syncd/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountsByUser retrieves all active accounts for a user.
	ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)

	// MapAccountsByExternalID returns every account under a connection keyed
	// by its provider-assigned external identifier. The transaction
	// reconciler resolves snapshots against this map.
	MapAccountsByExternalID(ctx context.Context, connectionID string) (map[string]domain.Account, error)
}

// AccountReconcileSupport defines the merge-key operations the account
// reconciler runs inside one unit of work.
type AccountReconcileSupport interface {
	TransactionManager

	// FindAccountByExternalIDInTx looks an account up by reconciliation
	// merge key within the given transaction.
	FindAccountByExternalIDInTx(ctx context.Context, tx pgx.Tx, connectionID, externalID string) (*domain.Account, error)

	// SaveAccountInTx inserts a new account within the given transaction.
	SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// UpdateAccountBalancesInTx overwrites an account's balances and
	// last-sync timestamp within the given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountReconcileSupport
}
