package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budget data.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

const budgetColumns = `
	budget_id, user_id, name, category, amount, period, start_date, end_date,
	is_active, created_at, created_by, last_updated_at, last_updated_by
`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var endDate sql.NullTime
	err := row.Scan(
		&b.BudgetID,
		&b.UserID,
		&b.Name,
		&b.Category,
		&b.Amount,
		&b.Period,
		&b.StartDate,
		&endDate,
		&b.IsActive,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if endDate.Valid {
		b.EndDate = &endDate.Time
	}
	return &b, nil
}

// SaveBudget persists a new budget.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		INSERT INTO budgets (budget_id, user_id, name, category, amount, period, start_date, end_date, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		budget.BudgetID,
		budget.UserID,
		budget.Name,
		budget.Category,
		budget.Amount,
		budget.Period,
		budget.StartDate,
		budget.EndDate,
		budget.IsActive,
		budget.CreatedAt,
		budget.CreatedBy,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: budget with ID %s already exists", apperrors.ErrDuplicate, budget.BudgetID)
		}
		return fmt.Errorf("failed to save budget %s: %w", budget.BudgetID, err)
	}
	return nil
}

// FindBudgetByID retrieves a budget by its ID.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1;`
	budget, err := scanBudget(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget by ID %s: %w", budgetID, err)
	}
	return budget, nil
}

// ListActiveBudgets retrieves all active budgets for a user.
func (r *PgxBudgetRepository) ListActiveBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets for user %s: %w", userID, err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", err)
	}
	return budgets, nil
}

// UpdateBudget updates an existing budget's details.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		UPDATE budgets
		SET name = $2,
		    amount = $3,
		    end_date = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE budget_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query,
		budget.BudgetID,
		budget.Name,
		budget.Amount,
		budget.EndDate,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", budget.BudgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateBudget marks a budget as inactive.
func (r *PgxBudgetRepository) DeactivateBudget(ctx context.Context, budgetID, userID string, now time.Time) error {
	query := `
		UPDATE budgets
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE budget_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, budgetID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate budget %s: %w", budgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
