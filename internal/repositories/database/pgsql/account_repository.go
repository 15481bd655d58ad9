package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `
	account_id, connection_id, user_id, external_id, name, official_name,
	account_type, subtype, mask, current_balance, available_balance,
	credit_limit, currency_code, is_active, last_sync_at,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.ConnectionID,
		&acc.UserID,
		&acc.ExternalID,
		&acc.Name,
		&acc.OfficialName,
		&acc.AccountType,
		&acc.Subtype,
		&acc.Mask,
		&acc.CurrentBalance,
		&acc.AvailableBalance,
		&acc.CreditLimit,
		&acc.CurrencyCode,
		&acc.IsActive,
		&acc.LastSyncAt,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// ListAccountsByUser retrieves all active accounts for a user.
func (r *PgxAccountRepository) ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %s: %w", userID, err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// MapAccountsByExternalID returns every account under a connection keyed by
// provider external ID, including inactive ones so historic transactions
// still resolve.
func (r *PgxAccountRepository) MapAccountsByExternalID(ctx context.Context, connectionID string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE connection_id = $1;`
	rows, err := r.Pool.Query(ctx, query, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to map accounts for connection %s: %w", connectionID, err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[acc.ExternalID] = *acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// FindAccountByExternalIDInTx looks an account up by reconciliation merge key
// within the given transaction.
func (r *PgxAccountRepository) FindAccountByExternalIDInTx(ctx context.Context, tx pgx.Tx, connectionID, externalID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE connection_id = $1 AND external_id = $2;`
	acc, err := scanAccount(tx.QueryRow(ctx, query, connectionID, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by external ID %s: %w", externalID, err)
	}
	return acc, nil
}

// SaveAccountInTx inserts a new account within the given transaction.
func (r *PgxAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, connection_id, user_id, external_id, name, official_name, account_type, subtype, mask, current_balance, available_balance, credit_limit, currency_code, is_active, last_sync_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := tx.Exec(ctx, query,
		account.AccountID,
		account.ConnectionID,
		account.UserID,
		account.ExternalID,
		account.Name,
		account.OfficialName,
		account.AccountType,
		account.Subtype,
		account.Mask,
		account.CurrentBalance,
		account.AvailableBalance,
		account.CreditLimit,
		account.CurrencyCode,
		account.IsActive,
		account.LastSyncAt,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account with external ID %s already exists under connection %s", apperrors.ErrDuplicate, account.ExternalID, account.ConnectionID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// UpdateAccountBalancesInTx overwrites the balance fields and last-sync
// timestamp within the given transaction. Identity fields never change.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2,
		    official_name = $3,
		    current_balance = $4,
		    available_balance = $5,
		    credit_limit = $6,
		    last_sync_at = $7,
		    last_updated_at = $8,
		    last_updated_by = $9
		WHERE account_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.OfficialName,
		account.CurrentBalance,
		account.AvailableBalance,
		account.CreditLimit,
		account.LastSyncAt,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
