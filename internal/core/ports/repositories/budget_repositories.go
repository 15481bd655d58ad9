package repositories

import (
	"context"
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
)

// BudgetReader defines read operations for budget data.
type BudgetReader interface {
	// FindBudgetByID retrieves a specific budget by its identifier.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListActiveBudgets retrieves all active budgets for a user.
	ListActiveBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budget data. Budgets are
// user-mutated and read-only to the sync pipeline.
type BudgetWriter interface {
	// SaveBudget persists a new budget.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudget updates an existing budget's details.
	UpdateBudget(ctx context.Context, budget domain.Budget) error

	// DeactivateBudget marks a budget as inactive.
	DeactivateBudget(ctx context.Context, budgetID, userID string, now time.Time) error
}

// BudgetRepositoryFacade combines all budget repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
