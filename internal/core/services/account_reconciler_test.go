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
	"github.com/mintflow/syncd/internal/core/services"
)

type AccountReconcilerTestSuite struct {
	suite.Suite
	mockRepo   *MockAccountRepository
	reconciler *services.AccountReconciler
	conn       domain.Connection
}

func (suite *AccountReconcilerTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.reconciler = services.NewAccountReconciler(suite.mockRepo)
	suite.conn = domain.Connection{
		ConnectionID: uuid.NewString(),
		UserID:       uuid.NewString(),
		Provider:     "plaid",
	}
}

func (suite *AccountReconcilerTestSuite) expectUnitOfWork() {
	suite.mockRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil)
}

func snapshotFor(externalID string, balance decimal.Decimal) domain.AccountSnapshot {
	return domain.AccountSnapshot{
		ExternalID:       externalID,
		Name:             "Checking",
		Type:             "depository",
		Subtype:          "checking",
		Mask:             "4321",
		CurrentBalance:   balance,
		AvailableBalance: balance,
		CurrencyCode:     "USD",
	}
}

func (suite *AccountReconcilerTestSuite) TestReconcile_CreatesNewAccounts() {
	ctx := context.Background()
	snapshots := []domain.AccountSnapshot{
		snapshotFor("ext-1", decimal.NewFromInt(100)),
		snapshotFor("ext-2", decimal.NewFromInt(250)),
	}

	suite.expectUnitOfWork()
	suite.mockRepo.On("FindAccountByExternalIDInTx", mock.Anything, mock.Anything, suite.conn.ConnectionID, "ext-1").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByExternalIDInTx", mock.Anything, mock.Anything, suite.conn.ConnectionID, "ext-2").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccountInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.ConnectionID == suite.conn.ConnectionID && a.UserID == suite.conn.UserID && a.IsActive
	})).Return(nil).Twice()

	result, err := suite.reconciler.Reconcile(ctx, suite.conn, snapshots)

	suite.Require().NoError(err)
	suite.Equal(2, result.Created)
	suite.Equal(0, result.Updated)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountReconcilerTestSuite) TestReconcile_ReplayIsNoOp() {
	ctx := context.Background()
	balance := decimal.NewFromInt(100)
	existing := &domain.Account{
		AccountID:        uuid.NewString(),
		ConnectionID:     suite.conn.ConnectionID,
		UserID:           suite.conn.UserID,
		ExternalID:       "ext-1",
		CurrentBalance:   balance,
		AvailableBalance: balance,
		CreditLimit:      decimal.Zero,
	}

	suite.expectUnitOfWork()
	suite.mockRepo.On("FindAccountByExternalIDInTx", mock.Anything, mock.Anything, suite.conn.ConnectionID, "ext-1").
		Return(existing, nil).Once()

	result, err := suite.reconciler.Reconcile(ctx, suite.conn, []domain.AccountSnapshot{snapshotFor("ext-1", balance)})

	suite.Require().NoError(err)
	suite.Equal(0, result.Created)
	suite.Equal(0, result.Updated)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccountInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountReconcilerTestSuite) TestReconcile_UpdatesChangedBalances() {
	ctx := context.Background()
	existing := &domain.Account{
		AccountID:        uuid.NewString(),
		ConnectionID:     suite.conn.ConnectionID,
		UserID:           suite.conn.UserID,
		ExternalID:       "ext-1",
		CurrentBalance:   decimal.NewFromInt(100),
		AvailableBalance: decimal.NewFromInt(100),
		CreditLimit:      decimal.Zero,
	}
	newBalance := decimal.NewFromInt(75)

	suite.expectUnitOfWork()
	suite.mockRepo.On("FindAccountByExternalIDInTx", mock.Anything, mock.Anything, suite.conn.ConnectionID, "ext-1").
		Return(existing, nil).Once()
	suite.mockRepo.On("UpdateAccountBalancesInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountID == existing.AccountID &&
			a.CurrentBalance.Equal(newBalance) &&
			a.LastUpdatedBy == suite.conn.UserID
	})).Return(nil).Once()

	result, err := suite.reconciler.Reconcile(ctx, suite.conn, []domain.AccountSnapshot{snapshotFor("ext-1", newBalance)})

	suite.Require().NoError(err)
	suite.Equal(0, result.Created)
	suite.Equal(1, result.Updated)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountReconcilerTestSuite) TestReconcile_InvalidSnapshotAbortsBeforeWrites() {
	ctx := context.Background()
	snapshots := []domain.AccountSnapshot{
		snapshotFor("ext-1", decimal.NewFromInt(100)),
		{Name: "No external id", Type: "depository"},
	}

	_, err := suite.reconciler.Reconcile(ctx, suite.conn, snapshots)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccountInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountReconcilerTestSuite) TestReconcile_EmptyBatch() {
	result, err := suite.reconciler.Reconcile(context.Background(), suite.conn, nil)

	suite.Require().NoError(err)
	suite.Equal(services.ReconcileResult{}, result)
	suite.mockRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *AccountReconcilerTestSuite) TestReconcile_SaveErrorRollsBack() {
	ctx := context.Background()

	suite.mockRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil)
	suite.mockRepo.On("FindAccountByExternalIDInTx", mock.Anything, mock.Anything, suite.conn.ConnectionID, "ext-1").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccountInTx", mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.reconciler.Reconcile(ctx, suite.conn, []domain.AccountSnapshot{snapshotFor("ext-1", decimal.NewFromInt(10))})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockRepo.AssertCalled(suite.T(), "Rollback", mock.Anything, mock.Anything)
}

func (suite *AccountReconcilerTestSuite) TestReconcile_NewCreditAccountKeepsLimit() {
	ctx := context.Background()
	limit := decimal.NewFromInt(5000)
	snap := snapshotFor("ext-credit", decimal.NewFromInt(1200))
	snap.Type = "credit"
	snap.CreditLimit = &limit

	suite.expectUnitOfWork()
	suite.mockRepo.On("FindAccountByExternalIDInTx", mock.Anything, mock.Anything, suite.conn.ConnectionID, "ext-credit").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccountInTx", mock.Anything, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.CreditLimit.Equal(limit) && a.AccountType == "credit"
	})).Return(nil).Once()

	result, err := suite.reconciler.Reconcile(ctx, suite.conn, []domain.AccountSnapshot{snap})

	suite.Require().NoError(err)
	suite.Equal(1, result.Created)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestAccountReconcilerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountReconcilerTestSuite))
}
