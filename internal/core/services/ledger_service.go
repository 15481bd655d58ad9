package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
	"github.com/mintflow/syncd/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountService serves read access to reconciled accounts.
type AccountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

// ListAccounts returns the user's active accounts across all connections.
func (s *AccountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	return s.accountRepo.ListAccountsByUser(ctx, userID)
}

// TransactionService serves transaction reads and category corrections.
type TransactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	accountRepo     portsrepo.AccountRepositoryFacade
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(transactionRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
}

var _ portssvc.TransactionSvcFacade = (*TransactionService)(nil)

// ListTransactions returns the user's transactions, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, req dto.ListTransactionsRequest) ([]domain.Transaction, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if req.AccountID != "" {
		account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
		if err != nil {
			return nil, err
		}
		if account.UserID != userID {
			return nil, apperrors.ErrNotFound
		}
	}
	return s.transactionRepo.ListTransactions(ctx, userID, req.AccountID, limit, req.Offset)
}

// CorrectCategory applies an explicit category correction. The corrected
// category survives every later sync.
func (s *TransactionService) CorrectCategory(ctx context.Context, userID, transactionID string, req dto.CorrectCategoryRequest) error {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, txn.AccountID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return apperrors.ErrNotFound
	}

	if err := s.transactionRepo.UpdateTransactionCategory(ctx, transactionID, req.Category, req.Subcategory, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to correct category", slog.String("transaction_id", transactionID))
		return err
	}
	s.LogInfo(ctx, "Transaction category corrected",
		slog.String("transaction_id", transactionID),
		slog.String("category", req.Category))
	return nil
}

// ReportingService serves spending aggregates over reconciled transactions.
type ReportingService struct {
	BaseService
	reportingRepo   portsrepo.ReportingRepositoryFacade
	spendIsPositive bool
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepositoryFacade, spendIsPositive bool) *ReportingService {
	return &ReportingService{
		reportingRepo:   reportingRepo,
		spendIsPositive: spendIsPositive,
	}
}

var _ portssvc.ReportingSvcFacade = (*ReportingService)(nil)

const topCategoryLimit = 10

// GetSpendingSummary aggregates the user's spend and income for the current
// instance of the named period (weekly, monthly or yearly).
func (s *ReportingService) GetSpendingSummary(ctx context.Context, userID, period string) (dto.SpendingSummaryResponse, error) {
	budgetPeriod := domain.BudgetPeriod(period)
	if !budgetPeriod.Valid() {
		return dto.SpendingSummaryResponse{}, apperrors.NewAppError(400, "unsupported report period", apperrors.ErrValidation)
	}
	from := budgetPeriod.PeriodStart(time.Now().UTC())

	totals, err := s.reportingRepo.GetPeriodTotals(ctx, userID, from, s.spendIsPositive)
	if err != nil {
		return dto.SpendingSummaryResponse{}, err
	}
	categories, err := s.reportingRepo.GetCategorySpending(ctx, userID, from, s.spendIsPositive, topCategoryLimit)
	if err != nil {
		return dto.SpendingSummaryResponse{}, err
	}

	resp := dto.SpendingSummaryResponse{
		Period:        period,
		TotalSpent:    totals.Spent,
		TotalIncome:   totals.Income,
		NetAmount:     totals.Income.Sub(totals.Spent),
		TopCategories: make([]dto.CategorySpendResponse, 0, len(categories)),
	}
	for _, c := range categories {
		percentage := decimalZeroSafePercent(c.Amount, totals.Spent)
		resp.TopCategories = append(resp.TopCategories, dto.CategorySpendResponse{
			Category:   c.Category,
			Amount:     c.Amount,
			Percentage: percentage,
		})
	}
	return resp, nil
}

// decimalZeroSafePercent returns part as a percentage of total, or zero when
// total is not positive.
func decimalZeroSafePercent(part, total decimal.Decimal) decimal.Decimal {
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}
