package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for transaction data.
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a user's transactions, newest first,
	// optionally filtered to one account.
	ListTransactions(ctx context.Context, userID, accountID string, limit, offset int) ([]domain.Transaction, error)

	// SumSpendByCategory sums a user's spend for one category with a date on
	// or after from. spendIsPositive selects which amount sign counts as
	// spend, matching the provider convention.
	SumSpendByCategory(ctx context.Context, userID, category string, from time.Time, spendIsPositive bool) (decimal.Decimal, error)
}

// TransactionWriter defines write operations outside the reconcile path.
type TransactionWriter interface {
	// UpdateTransactionCategory applies an explicit category correction and
	// marks the category user-set so reconciliation never overwrites it.
	UpdateTransactionCategory(ctx context.Context, transactionID, category, subcategory, userID string, now time.Time) error
}

// TransactionReconcileSupport defines the merge-key operations the
// transaction reconciler runs inside one unit of work.
type TransactionReconcileSupport interface {
	TransactionManager

	// FindTransactionByExternalIDInTx looks a transaction up by
	// reconciliation merge key within the given transaction.
	FindTransactionByExternalIDInTx(ctx context.Context, tx pgx.Tx, accountID, externalID string) (*domain.Transaction, error)

	// SaveTransactionInTx inserts a new transaction within the given
	// transaction.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// UpdateTransactionInTx overwrites the mutable snapshot fields (amount,
	// description, merchant, pending) within the given transaction. Category
	// fields are never touched here.
	UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionReconcileSupport
}
