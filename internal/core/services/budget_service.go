package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
	"github.com/mintflow/syncd/internal/dto"
)

// BudgetService manages user budgets and reports their period-to-date
// progress.
type BudgetService struct {
	BaseService
	budgetRepo      portsrepo.BudgetRepositoryFacade
	transactionRepo portsrepo.TransactionReader
	spendIsPositive bool
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade, transactionRepo portsrepo.TransactionReader, spendIsPositive bool) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		spendIsPositive: spendIsPositive,
	}
}

var _ portssvc.BudgetSvcFacade = (*BudgetService)(nil)

// CreateBudget persists a new budget for the user.
func (s *BudgetService) CreateBudget(ctx context.Context, userID string, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	period := domain.BudgetPeriod(req.Period)
	if !period.Valid() {
		return nil, apperrors.NewAppError(400, "unsupported budget period", apperrors.ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewAppError(400, "budget amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	budget := domain.Budget{
		BudgetID:  uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		Amount:    req.Amount,
		Period:    period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		s.LogError(ctx, err, "Failed to save budget", slog.String("user_id", userID))
		return nil, err
	}
	s.LogInfo(ctx, "Budget created",
		slog.String("budget_id", budget.BudgetID),
		slog.String("category", budget.Category))
	return &budget, nil
}

// ListBudgets returns the user's active budgets with current-period spend.
func (s *BudgetService) ListBudgets(ctx context.Context, userID string) ([]dto.BudgetResponse, error) {
	budgets, err := s.budgetRepo.ListActiveBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	responses := make([]dto.BudgetResponse, 0, len(budgets))
	for _, budget := range budgets {
		spent, err := s.transactionRepo.SumSpendByCategory(ctx, userID, budget.Category, budget.Period.PeriodStart(now), s.spendIsPositive)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.ToBudgetResponse(budget, spent))
	}
	return responses, nil
}

// UpdateBudget applies the provided field updates to one of the user's
// budgets.
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error) {
	budget, err := s.findUserBudget(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		budget.Name = *req.Name
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, apperrors.NewAppError(400, "budget amount must be positive", apperrors.ErrValidation)
		}
		budget.Amount = *req.Amount
	}
	if req.EndDate != nil {
		budget.EndDate = req.EndDate
	}
	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = userID

	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		s.LogError(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, err
	}
	return budget, nil
}

// RemoveBudget deactivates one of the user's budgets. Historic alerts stay.
func (s *BudgetService) RemoveBudget(ctx context.Context, userID, budgetID string) error {
	if _, err := s.findUserBudget(ctx, userID, budgetID); err != nil {
		return err
	}
	if err := s.budgetRepo.DeactivateBudget(ctx, budgetID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to remove budget", slog.String("budget_id", budgetID))
		return err
	}
	s.LogInfo(ctx, "Budget removed", slog.String("budget_id", budgetID))
	return nil
}

func (s *BudgetService) findUserBudget(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID || !budget.IsActive {
		return nil, apperrors.ErrNotFound
	}
	return budget, nil
}
