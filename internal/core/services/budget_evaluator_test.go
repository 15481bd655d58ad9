package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/core/services"
)

type BudgetEvaluatorTestSuite struct {
	suite.Suite
	mockBudgetRepo *MockBudgetRepository
	mockTxnRepo    *MockTransactionRepository
	mockAlertRepo  *MockAlertRepository
	evaluator      *services.BudgetEvaluator
	userID         string
}

func (suite *BudgetEvaluatorTestSuite) SetupTest() {
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAlertRepo = new(MockAlertRepository)
	suite.evaluator = services.NewBudgetEvaluator(
		suite.mockBudgetRepo,
		suite.mockTxnRepo,
		suite.mockAlertRepo,
		[]int{80, 100},
		true,
	)
	suite.userID = uuid.NewString()
}

func (suite *BudgetEvaluatorTestSuite) budgetFor(category string, amount decimal.Decimal) domain.Budget {
	return domain.Budget{
		BudgetID:  uuid.NewString(),
		UserID:    suite.userID,
		Name:      category + " budget",
		Category:  category,
		Amount:    amount,
		Period:    domain.PeriodMonthly,
		StartDate: time.Now().UTC().AddDate(-1, 0, 0),
		IsActive:  true,
	}
}

func (suite *BudgetEvaluatorTestSuite) TestEvaluate_FiresWarningAndExceeded() {
	ctx := context.Background()
	budget := suite.budgetFor("Groceries", decimal.NewFromInt(100))

	suite.mockBudgetRepo.On("ListActiveBudgets", mock.Anything, suite.userID).
		Return([]domain.Budget{budget}, nil).Once()
	suite.mockTxnRepo.On("SumSpendByCategory", mock.Anything, suite.userID, "Groceries", mock.Anything, true).
		Return(decimal.NewFromInt(105), nil).Once()
	suite.mockAlertRepo.On("CreateAlertIfAbsent", mock.Anything, mock.MatchedBy(func(a domain.BudgetAlert) bool {
		return a.Threshold == 80 && a.AlertType == domain.AlertTypeWarning && a.BudgetID == budget.BudgetID
	})).Return(true, nil).Once()
	suite.mockAlertRepo.On("CreateAlertIfAbsent", mock.Anything, mock.MatchedBy(func(a domain.BudgetAlert) bool {
		return a.Threshold == 100 && a.AlertType == domain.AlertTypeExceeded && a.BudgetID == budget.BudgetID
	})).Return(true, nil).Once()

	fired, err := suite.evaluator.Evaluate(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(fired, 2)
	suite.Equal(80, fired[0].Threshold)
	suite.Equal(100, fired[1].Threshold)
	suite.mockAlertRepo.AssertExpectations(suite.T())
}

func (suite *BudgetEvaluatorTestSuite) TestEvaluate_AlreadyFiredCrossingsAreSilent() {
	ctx := context.Background()
	budget := suite.budgetFor("Groceries", decimal.NewFromInt(100))

	suite.mockBudgetRepo.On("ListActiveBudgets", mock.Anything, suite.userID).
		Return([]domain.Budget{budget}, nil).Once()
	suite.mockTxnRepo.On("SumSpendByCategory", mock.Anything, suite.userID, "Groceries", mock.Anything, true).
		Return(decimal.NewFromInt(85), nil).Once()
	// The dedup key already has an alert for this period.
	suite.mockAlertRepo.On("CreateAlertIfAbsent", mock.Anything, mock.Anything).Return(false, nil).Once()

	fired, err := suite.evaluator.Evaluate(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(fired)
}

func (suite *BudgetEvaluatorTestSuite) TestEvaluate_UnderThresholdFiresNothing() {
	ctx := context.Background()
	budget := suite.budgetFor("Groceries", decimal.NewFromInt(100))

	suite.mockBudgetRepo.On("ListActiveBudgets", mock.Anything, suite.userID).
		Return([]domain.Budget{budget}, nil).Once()
	suite.mockTxnRepo.On("SumSpendByCategory", mock.Anything, suite.userID, "Groceries", mock.Anything, true).
		Return(decimal.NewFromInt(50), nil).Once()

	fired, err := suite.evaluator.Evaluate(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(fired)
	suite.mockAlertRepo.AssertNotCalled(suite.T(), "CreateAlertIfAbsent", mock.Anything, mock.Anything)
}

func (suite *BudgetEvaluatorTestSuite) TestEvaluate_ZeroAmountBudgetNeverFires() {
	ctx := context.Background()
	budget := suite.budgetFor("Groceries", decimal.Zero)

	suite.mockBudgetRepo.On("ListActiveBudgets", mock.Anything, suite.userID).
		Return([]domain.Budget{budget}, nil).Once()
	suite.mockTxnRepo.On("SumSpendByCategory", mock.Anything, suite.userID, "Groceries", mock.Anything, true).
		Return(decimal.NewFromInt(500), nil).Once()

	fired, err := suite.evaluator.Evaluate(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(fired)
	suite.mockAlertRepo.AssertNotCalled(suite.T(), "CreateAlertIfAbsent", mock.Anything, mock.Anything)
}

func (suite *BudgetEvaluatorTestSuite) TestEvaluate_FutureBudgetSkipped() {
	ctx := context.Background()
	budget := suite.budgetFor("Travel", decimal.NewFromInt(100))
	budget.StartDate = time.Now().UTC().AddDate(0, 1, 0)

	suite.mockBudgetRepo.On("ListActiveBudgets", mock.Anything, suite.userID).
		Return([]domain.Budget{budget}, nil).Once()

	fired, err := suite.evaluator.Evaluate(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(fired)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SumSpendByCategory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetEvaluatorTestSuite) TestEvaluate_OneFailingBudgetDoesNotStopOthers() {
	ctx := context.Background()
	failing := suite.budgetFor("Groceries", decimal.NewFromInt(100))
	healthy := suite.budgetFor("Entertainment", decimal.NewFromInt(50))

	suite.mockBudgetRepo.On("ListActiveBudgets", mock.Anything, suite.userID).
		Return([]domain.Budget{failing, healthy}, nil).Once()
	suite.mockTxnRepo.On("SumSpendByCategory", mock.Anything, suite.userID, "Groceries", mock.Anything, true).
		Return(decimal.Zero, assert.AnError).Once()
	suite.mockTxnRepo.On("SumSpendByCategory", mock.Anything, suite.userID, "Entertainment", mock.Anything, true).
		Return(decimal.NewFromInt(45), nil).Once()
	suite.mockAlertRepo.On("CreateAlertIfAbsent", mock.Anything, mock.MatchedBy(func(a domain.BudgetAlert) bool {
		return a.BudgetID == healthy.BudgetID && a.Threshold == 80
	})).Return(true, nil).Once()

	fired, err := suite.evaluator.Evaluate(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(fired, 1)
	suite.Equal(healthy.BudgetID, fired[0].BudgetID)
	suite.mockAlertRepo.AssertExpectations(suite.T())
}

func (suite *BudgetEvaluatorTestSuite) TestEvaluate_PeriodStartOnDedupKey() {
	ctx := context.Background()
	budget := suite.budgetFor("Groceries", decimal.NewFromInt(100))
	now := time.Now().UTC()
	wantPeriodStart := domain.PeriodMonthly.PeriodStart(now)

	suite.mockBudgetRepo.On("ListActiveBudgets", mock.Anything, suite.userID).
		Return([]domain.Budget{budget}, nil).Once()
	suite.mockTxnRepo.On("SumSpendByCategory", mock.Anything, suite.userID, "Groceries", wantPeriodStart, true).
		Return(decimal.NewFromInt(90), nil).Once()
	suite.mockAlertRepo.On("CreateAlertIfAbsent", mock.Anything, mock.MatchedBy(func(a domain.BudgetAlert) bool {
		return a.PeriodStart.Equal(wantPeriodStart)
	})).Return(true, nil).Once()

	fired, err := suite.evaluator.Evaluate(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Len(fired, 1)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestBudgetEvaluatorTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetEvaluatorTestSuite))
}
