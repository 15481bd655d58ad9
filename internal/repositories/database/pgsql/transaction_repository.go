package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `
	transaction_id, account_id, user_id, external_id, amount, date,
	description, merchant_name, category, subcategory, category_user_set,
	pending, direction, raw_payload,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.AccountID,
		&txn.UserID,
		&txn.ExternalID,
		&txn.Amount,
		&txn.Date,
		&txn.Description,
		&txn.MerchantName,
		&txn.Category,
		&txn.Subcategory,
		&txn.CategoryUserSet,
		&txn.Pending,
		&txn.Direction,
		&txn.RawPayload,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions retrieves a user's transactions, newest first, optionally
// filtered to one account.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, userID, accountID string, limit, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND ($2 = '' OR account_id = $2)
		ORDER BY date DESC, transaction_id
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, userID, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

// SumSpendByCategory sums a user's spend magnitude for one category with a
// date on or after from. Pending transactions count; the provider replaces
// them with settled rows on later syncs.
func (r *PgxTransactionRepository) SumSpendByCategory(ctx context.Context, userID, category string, from time.Time, spendIsPositive bool) (decimal.Decimal, error) {
	sign := "amount"
	if !spendIsPositive {
		sign = "-amount"
	}
	query := `
		SELECT COALESCE(SUM(` + sign + `), 0)
		FROM transactions
		WHERE user_id = $1 AND category = $2 AND date >= $3 AND direction = 'debit';
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, userID, category, from).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum spend for category %s: %w", category, err)
	}
	return total, nil
}

// UpdateTransactionCategory applies an explicit category correction and sets
// the user-set flag so reconciliation never overwrites it.
func (r *PgxTransactionRepository) UpdateTransactionCategory(ctx context.Context, transactionID, category, subcategory, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET category = $2,
		    subcategory = $3,
		    category_user_set = TRUE,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, category, subcategory, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update category for transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindTransactionByExternalIDInTx looks a transaction up by reconciliation
// merge key within the given transaction.
func (r *PgxTransactionRepository) FindTransactionByExternalIDInTx(ctx context.Context, tx pgx.Tx, accountID, externalID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1 AND external_id = $2;`
	txn, err := scanTransaction(tx.QueryRow(ctx, query, accountID, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by external ID %s: %w", externalID, err)
	}
	return txn, nil
}

// SaveTransactionInTx inserts a new transaction within the given transaction.
func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, account_id, user_id, external_id, amount, date, description, merchant_name, category, subcategory, category_user_set, pending, direction, raw_payload, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.AccountID,
		txn.UserID,
		txn.ExternalID,
		txn.Amount,
		txn.Date,
		txn.Description,
		txn.MerchantName,
		txn.Category,
		txn.Subcategory,
		txn.CategoryUserSet,
		txn.Pending,
		txn.Direction,
		txn.RawPayload,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: transaction with external ID %s already exists under account %s", apperrors.ErrDuplicate, txn.ExternalID, txn.AccountID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// UpdateTransactionInTx overwrites the mutable snapshot fields within the
// given transaction. Category fields are deliberately absent from the SET
// list; corrections and classifier output both survive re-syncs.
func (r *PgxTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET amount = $2,
		    date = $3,
		    description = $4,
		    merchant_name = $5,
		    pending = $6,
		    direction = $7,
		    raw_payload = $8,
		    last_updated_at = $9,
		    last_updated_by = $10
		WHERE transaction_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.Amount,
		txn.Date,
		txn.Description,
		txn.MerchantName,
		txn.Pending,
		txn.Direction,
		txn.RawPayload,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
