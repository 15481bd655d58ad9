package services

import (
	"context"

	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/dto"
)

// BudgetSvcFacade manages user budgets and their derived alerts.
type BudgetSvcFacade interface {
	CreateBudget(ctx context.Context, userID string, req dto.CreateBudgetRequest) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]dto.BudgetResponse, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error)
	RemoveBudget(ctx context.Context, userID, budgetID string) error
}

// BudgetEvaluatorSvc recomputes period-to-date spend per budget and fires
// alerts on threshold crossings, exactly once per (budget, threshold,
// period-instance).
type BudgetEvaluatorSvc interface {
	// Evaluate checks every in-effect budget for the user and returns the
	// alerts newly fired by this pass. Already-fired crossings are skipped.
	Evaluate(ctx context.Context, userID string) ([]domain.BudgetAlert, error)
}

// AlertDispatcherSvc publishes fired alerts to the notification topic.
type AlertDispatcherSvc interface {
	// Dispatch publishes one alert notification. A publish failure is
	// logged but never un-fires the alert.
	Dispatch(ctx context.Context, alert domain.BudgetAlert)
}
