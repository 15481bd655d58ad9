package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/core/ports"
	"github.com/mintflow/syncd/internal/core/services"
)

type ConnectionServiceTestSuite struct {
	suite.Suite
	mockRepo     *MockConnectionRepository
	mockProvider *MockBankDataProvider
	service      *services.ConnectionService
	userID       string
}

func (suite *ConnectionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockConnectionRepository)
	suite.mockProvider = new(MockBankDataProvider)
	// The initial background sync is exercised by the orchestrator tests.
	suite.service = services.NewConnectionService(suite.mockRepo, suite.mockProvider, nil)
	suite.userID = uuid.NewString()
}

func (suite *ConnectionServiceTestSuite) TestCreateLinkToken() {
	ctx := context.Background()
	suite.mockProvider.On("CreateLinkToken", ctx, suite.userID).Return("link-token-123", nil).Once()

	token, err := suite.service.CreateLinkToken(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("link-token-123", token)
}

func (suite *ConnectionServiceTestSuite) TestExchangeToken_CreatesConnection() {
	ctx := context.Background()
	exchanged := ports.ExchangeResult{
		CredentialRef:   "cred-ref-1",
		InstitutionID:   "ins_1",
		InstitutionName: "First Bank",
	}

	suite.mockProvider.On("ExchangeToken", ctx, "public-token").Return(exchanged, nil).Once()
	suite.mockProvider.On("Name").Return("plaid")
	suite.mockRepo.On("FindConnectionByInstitution", ctx, suite.userID, "ins_1", "plaid").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveConnection", ctx, mock.MatchedBy(func(c domain.Connection) bool {
		return c.UserID == suite.userID &&
			c.InstitutionID == "ins_1" &&
			c.InstitutionName == "First Bank" &&
			c.CredentialRef == "cred-ref-1" &&
			c.SyncState == domain.SyncStateIdle &&
			c.IsActive
	})).Return(nil).Once()

	conn, err := suite.service.ExchangeToken(ctx, suite.userID, "public-token")

	suite.Require().NoError(err)
	suite.Require().NotNil(conn)
	suite.NotEmpty(conn.ConnectionID)
	suite.Equal("plaid", conn.Provider)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ConnectionServiceTestSuite) TestExchangeToken_RelinksExistingInstitution() {
	ctx := context.Background()
	existing := &domain.Connection{
		ConnectionID:  uuid.NewString(),
		UserID:        suite.userID,
		Provider:      "plaid",
		InstitutionID: "ins_1",
		SyncState:     domain.SyncStateError,
		ErrorCode:     domain.ErrCodeRelinkRequired,
		IsActive:      true,
	}
	relinked := &domain.Connection{
		ConnectionID:  existing.ConnectionID,
		UserID:        suite.userID,
		Provider:      "plaid",
		InstitutionID: "ins_1",
		SyncState:     domain.SyncStateIdle,
		IsActive:      true,
	}
	exchanged := ports.ExchangeResult{CredentialRef: "cred-ref-2", InstitutionID: "ins_1", InstitutionName: "First Bank"}

	suite.mockProvider.On("ExchangeToken", ctx, "public-token").Return(exchanged, nil).Once()
	suite.mockProvider.On("Name").Return("plaid")
	suite.mockRepo.On("FindConnectionByInstitution", ctx, suite.userID, "ins_1", "plaid").
		Return(existing, nil).Once()
	suite.mockRepo.On("UpdateCredential", ctx, existing.ConnectionID, "cred-ref-2", suite.userID, mock.Anything).
		Return(nil).Once()
	suite.mockRepo.On("FindConnectionByID", ctx, existing.ConnectionID).Return(relinked, nil).Once()

	conn, err := suite.service.ExchangeToken(ctx, suite.userID, "public-token")

	suite.Require().NoError(err)
	suite.Equal(existing.ConnectionID, conn.ConnectionID)
	suite.Equal(domain.SyncStateIdle, conn.SyncState)
	// Re-link never creates a duplicate connection.
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveConnection", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ConnectionServiceTestSuite) TestExchangeToken_ProviderFailure() {
	ctx := context.Background()
	suite.mockProvider.On("ExchangeToken", ctx, "public-token").
		Return(ports.ExchangeResult{}, apperrors.ErrProviderUnavailable).Once()

	conn, err := suite.service.ExchangeToken(ctx, suite.userID, "public-token")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrProviderUnavailable)
	suite.Nil(conn)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveConnection", mock.Anything, mock.Anything)
}

func (suite *ConnectionServiceTestSuite) TestGetConnection_OtherUsersConnectionHidden() {
	ctx := context.Background()
	conn := &domain.Connection{
		ConnectionID: uuid.NewString(),
		UserID:       uuid.NewString(),
		IsActive:     true,
	}
	suite.mockRepo.On("FindConnectionByID", ctx, conn.ConnectionID).Return(conn, nil).Once()

	got, err := suite.service.GetConnection(ctx, suite.userID, conn.ConnectionID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(got)
}

func (suite *ConnectionServiceTestSuite) TestRemoveConnection() {
	ctx := context.Background()
	conn := &domain.Connection{
		ConnectionID: uuid.NewString(),
		UserID:       suite.userID,
		IsActive:     true,
	}
	suite.mockRepo.On("FindConnectionByID", ctx, conn.ConnectionID).Return(conn, nil).Once()
	suite.mockRepo.On("DeactivateConnection", ctx, conn.ConnectionID, suite.userID, mock.Anything).
		Return(nil).Once()

	err := suite.service.RemoveConnection(ctx, suite.userID, conn.ConnectionID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ConnectionServiceTestSuite) TestRemoveConnection_RepoError() {
	ctx := context.Background()
	conn := &domain.Connection{
		ConnectionID: uuid.NewString(),
		UserID:       suite.userID,
		IsActive:     true,
	}
	suite.mockRepo.On("FindConnectionByID", ctx, conn.ConnectionID).Return(conn, nil).Once()
	suite.mockRepo.On("DeactivateConnection", ctx, conn.ConnectionID, suite.userID, mock.Anything).
		Return(assert.AnError).Once()

	err := suite.service.RemoveConnection(ctx, suite.userID, conn.ConnectionID)

	suite.Require().Error(err)
}

func TestConnectionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConnectionServiceTestSuite))
}
