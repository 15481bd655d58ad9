package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
)

// BudgetEvaluator recomputes period-to-date spend for each in-effect budget
// and fires threshold alerts. Firing is idempotent: the alert store's dedup
// key guarantees at most one alert per (budget, threshold, period instance)
// no matter how many evaluation passes run.
type BudgetEvaluator struct {
	BaseService
	budgetRepo      portsrepo.BudgetRepositoryFacade
	transactionRepo portsrepo.TransactionReader
	alertRepo       portsrepo.AlertRepositoryFacade
	thresholds      []int
	spendIsPositive bool
	now             func() time.Time
}

// NewBudgetEvaluator creates a new BudgetEvaluator. Thresholds are percent
// values checked in the given order.
func NewBudgetEvaluator(
	budgetRepo portsrepo.BudgetRepositoryFacade,
	transactionRepo portsrepo.TransactionReader,
	alertRepo portsrepo.AlertRepositoryFacade,
	thresholds []int,
	spendIsPositive bool,
) *BudgetEvaluator {
	return &BudgetEvaluator{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		alertRepo:       alertRepo,
		thresholds:      thresholds,
		spendIsPositive: spendIsPositive,
		now:             time.Now,
	}
}

var _ portssvc.BudgetEvaluatorSvc = (*BudgetEvaluator)(nil)

// Evaluate checks all of the user's in-effect budgets and returns the alerts
// newly fired by this pass. A failure on one budget is logged and skipped so
// the remaining budgets still get evaluated.
func (e *BudgetEvaluator) Evaluate(ctx context.Context, userID string) ([]domain.BudgetAlert, error) {
	budgets, err := e.budgetRepo.ListActiveBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	var fired []domain.BudgetAlert
	for _, budget := range budgets {
		if !budget.InEffect(now) {
			continue
		}
		alerts, err := e.evaluateBudget(ctx, budget, now)
		if err != nil {
			e.LogError(ctx, err, "Budget evaluation failed, skipping budget",
				slog.String("budget_id", budget.BudgetID),
				slog.String("category", budget.Category))
			continue
		}
		fired = append(fired, alerts...)
	}
	return fired, nil
}

func (e *BudgetEvaluator) evaluateBudget(ctx context.Context, budget domain.Budget, now time.Time) ([]domain.BudgetAlert, error) {
	periodStart := budget.Period.PeriodStart(now)
	spent, err := e.transactionRepo.SumSpendByCategory(ctx, budget.UserID, budget.Category, periodStart, e.spendIsPositive)
	if err != nil {
		return nil, err
	}

	percent := usedPercent(spent, budget.Amount)
	var fired []domain.BudgetAlert
	for _, threshold := range e.thresholds {
		if percent < float64(threshold) {
			continue
		}
		alert := domain.BudgetAlert{
			AlertID:      uuid.NewString(),
			UserID:       budget.UserID,
			BudgetID:     budget.BudgetID,
			AlertType:    domain.AlertTypeForThreshold(threshold),
			Threshold:    threshold,
			PeriodStart:  periodStart,
			SpentAmount:  spent,
			BudgetAmount: budget.Amount,
			Category:     budget.Category,
			CreatedAt:    now,
		}
		created, err := e.alertRepo.CreateAlertIfAbsent(ctx, alert)
		if err != nil {
			return fired, err
		}
		if !created {
			continue
		}
		e.LogInfo(ctx, "Budget alert fired",
			slog.String("budget_id", budget.BudgetID),
			slog.Int("threshold", threshold),
			slog.String("spent", spent.String()),
			slog.String("budget_amount", budget.Amount.String()))
		fired = append(fired, alert)
	}
	return fired, nil
}

// usedPercent returns spend as a percentage of the budget amount. A
// non-positive budget amount never triggers alerts.
func usedPercent(spent, amount decimal.Decimal) float64 {
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct, _ := spent.Div(amount).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
