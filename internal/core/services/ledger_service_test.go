package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	"github.com/mintflow/syncd/internal/core/services"
	"github.com/mintflow/syncd/internal/dto"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	service         *services.TransactionService
	userID          string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo)
	suite.userID = uuid.NewString()
}

func (suite *TransactionServiceTestSuite) TestListTransactions_DefaultLimit() {
	ctx := context.Background()
	suite.mockTxnRepo.On("ListTransactions", ctx, suite.userID, "", 100, 0).
		Return([]domain.Transaction{}, nil).Once()

	_, err := suite.service.ListTransactions(ctx, suite.userID, dto.ListTransactionsRequest{})

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestListTransactions_LimitClamped() {
	ctx := context.Background()
	suite.mockTxnRepo.On("ListTransactions", ctx, suite.userID, "", 500, 0).
		Return([]domain.Transaction{}, nil).Once()

	_, err := suite.service.ListTransactions(ctx, suite.userID, dto.ListTransactionsRequest{Limit: 9999})

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestListTransactions_OtherUsersAccountHidden() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID: uuid.NewString(),
		UserID:    uuid.NewString(),
	}
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	_, err := suite.service.ListTransactions(ctx, suite.userID, dto.ListTransactionsRequest{AccountID: account.AccountID})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCorrectCategory() {
	ctx := context.Background()
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     uuid.NewString(),
		UserID:        suite.userID,
	}
	account := &domain.Account{AccountID: txn.AccountID, UserID: suite.userID}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, txn.AccountID).Return(account, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionCategory", ctx, txn.TransactionID, "Travel", "Flights", suite.userID, mock.Anything).
		Return(nil).Once()

	err := suite.service.CorrectCategory(ctx, suite.userID, txn.TransactionID, dto.CorrectCategoryRequest{
		Category:    "Travel",
		Subcategory: "Flights",
	})

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCorrectCategory_OtherUsersTransactionHidden() {
	ctx := context.Background()
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     uuid.NewString(),
	}
	account := &domain.Account{AccountID: txn.AccountID, UserID: uuid.NewString()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, txn.AccountID).Return(account, nil).Once()

	err := suite.service.CorrectCategory(ctx, suite.userID, txn.TransactionID, dto.CorrectCategoryRequest{Category: "Travel"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransactionCategory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	service           *services.ReportingService
	userID            string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.service = services.NewReportingService(suite.mockReportingRepo, true)
	suite.userID = uuid.NewString()
}

func (suite *ReportingServiceTestSuite) TestGetSpendingSummary() {
	ctx := context.Background()
	totals := portsrepo.PeriodTotals{
		Spent:  decimal.NewFromInt(800),
		Income: decimal.NewFromInt(3000),
	}
	categories := []portsrepo.CategorySpend{
		{Category: "Groceries", Amount: decimal.NewFromInt(400)},
		{Category: "Transportation", Amount: decimal.NewFromInt(200)},
	}

	suite.mockReportingRepo.On("GetPeriodTotals", ctx, suite.userID, mock.AnythingOfType("time.Time"), true).
		Return(totals, nil).Once()
	suite.mockReportingRepo.On("GetCategorySpending", ctx, suite.userID, mock.AnythingOfType("time.Time"), true, 10).
		Return(categories, nil).Once()

	summary, err := suite.service.GetSpendingSummary(ctx, suite.userID, "monthly")

	suite.Require().NoError(err)
	suite.Equal("monthly", summary.Period)
	suite.True(summary.NetAmount.Equal(decimal.NewFromInt(2200)))
	suite.Require().Len(summary.TopCategories, 2)
	suite.True(summary.TopCategories[0].Percentage.Equal(decimal.NewFromInt(50)))
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestGetSpendingSummary_InvalidPeriod() {
	_, err := suite.service.GetSpendingSummary(context.Background(), suite.userID, "daily")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetPeriodTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
