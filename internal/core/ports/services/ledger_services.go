package services

import (
	"context"

	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/dto"
)

// AccountSvcFacade serves read access to reconciled accounts.
type AccountSvcFacade interface {
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
}

// TransactionSvcFacade serves read access to reconciled transactions plus
// the explicit category correction operation.
type TransactionSvcFacade interface {
	ListTransactions(ctx context.Context, userID string, req dto.ListTransactionsRequest) ([]domain.Transaction, error)
	CorrectCategory(ctx context.Context, userID, transactionID string, req dto.CorrectCategoryRequest) error
}

// ReportingSvcFacade serves spending aggregates.
type ReportingSvcFacade interface {
	GetSpendingSummary(ctx context.Context, userID, period string) (dto.SpendingSummaryResponse, error)
}
