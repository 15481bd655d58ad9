package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/core/ports"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

// MockConnectionRepository is a mock type for the ConnectionRepositoryFacade interface
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) FindConnectionByID(ctx context.Context, connectionID string) (*domain.Connection, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) FindConnectionByInstitution(ctx context.Context, userID, institutionID, provider string) (*domain.Connection, error) {
	args := m.Called(ctx, userID, institutionID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) ListActiveConnections(ctx context.Context, userID string) ([]domain.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) ListSyncableConnections(ctx context.Context) ([]domain.Connection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) SaveConnection(ctx context.Context, conn domain.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) UpdateCredential(ctx context.Context, connectionID, credentialRef, userID string, now time.Time) error {
	args := m.Called(ctx, connectionID, credentialRef, userID, now)
	return args.Error(0)
}

func (m *MockConnectionRepository) DeactivateConnection(ctx context.Context, connectionID, userID string, now time.Time) error {
	args := m.Called(ctx, connectionID, userID, now)
	return args.Error(0)
}

func (m *MockConnectionRepository) TryBeginSync(ctx context.Context, connectionID string, now time.Time) (int64, error) {
	args := m.Called(ctx, connectionID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConnectionRepository) RecordSyncResult(ctx context.Context, connectionID string, seq int64, result domain.ConnectionSyncResult) error {
	args := m.Called(ctx, connectionID, seq, result)
	return args.Error(0)
}

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) MapAccountsByExternalID(ctx context.Context, connectionID string) (map[string]domain.Account, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByExternalIDInTx(ctx context.Context, tx pgx.Tx, connectionID, externalID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, connectionID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, userID, accountID string, limit, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumSpendByCategory(ctx context.Context, userID, category string, from time.Time, spendIsPositive bool) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, category, from, spendIsPositive)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransactionCategory(ctx context.Context, transactionID, category, subcategory, userID string, now time.Time) error {
	args := m.Called(ctx, transactionID, category, subcategory, userID, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTransactionRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByExternalIDInTx(ctx context.Context, tx pgx.Tx, accountID, externalID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, accountID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

// MockSyncLogRepository is a mock type for the SyncLogRepositoryFacade interface
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) SaveSyncLog(ctx context.Context, log domain.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) ListSyncLogs(ctx context.Context, connectionID string, limit int) ([]domain.SyncLog, error) {
	args := m.Called(ctx, connectionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SyncLog), args.Error(1)
}

// MockBudgetRepository is a mock type for the BudgetRepositoryFacade interface
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListActiveBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) DeactivateBudget(ctx context.Context, budgetID, userID string, now time.Time) error {
	args := m.Called(ctx, budgetID, userID, now)
	return args.Error(0)
}

// MockAlertRepository is a mock type for the AlertRepositoryFacade interface
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) CreateAlertIfAbsent(ctx context.Context, alert domain.BudgetAlert) (bool, error) {
	args := m.Called(ctx, alert)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) MarkAlertSent(ctx context.Context, alertID string, sentAt time.Time) error {
	args := m.Called(ctx, alertID, sentAt)
	return args.Error(0)
}

func (m *MockAlertRepository) ListAlerts(ctx context.Context, userID string, limit int) ([]domain.BudgetAlert, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetAlert), args.Error(1)
}

// MockReportingRepository is a mock type for the ReportingRepositoryFacade interface
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetPeriodTotals(ctx context.Context, userID string, from time.Time, spendIsPositive bool) (portsrepo.PeriodTotals, error) {
	args := m.Called(ctx, userID, from, spendIsPositive)
	return args.Get(0).(portsrepo.PeriodTotals), args.Error(1)
}

func (m *MockReportingRepository) GetCategorySpending(ctx context.Context, userID string, from time.Time, spendIsPositive bool, limit int) ([]portsrepo.CategorySpend, error) {
	args := m.Called(ctx, userID, from, spendIsPositive, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.CategorySpend), args.Error(1)
}

// MockBankDataProvider is a mock type for the BankDataProvider interface
type MockBankDataProvider struct {
	mock.Mock
}

func (m *MockBankDataProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBankDataProvider) FetchAccounts(ctx context.Context, credentialRef string) ([]domain.AccountSnapshot, error) {
	args := m.Called(ctx, credentialRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountSnapshot), args.Error(1)
}

func (m *MockBankDataProvider) FetchTransactions(ctx context.Context, credentialRef, cursor string, r ports.DateRange) (ports.TransactionsPage, error) {
	args := m.Called(ctx, credentialRef, cursor, r)
	return args.Get(0).(ports.TransactionsPage), args.Error(1)
}

func (m *MockBankDataProvider) ExchangeToken(ctx context.Context, publicToken string) (ports.ExchangeResult, error) {
	args := m.Called(ctx, publicToken)
	return args.Get(0).(ports.ExchangeResult), args.Error(1)
}

func (m *MockBankDataProvider) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockCategorizer is a mock type for the Categorizer interface
type MockCategorizer struct {
	mock.Mock
}

func (m *MockCategorizer) Classify(ctx context.Context, text string) (ports.Classification, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(ports.Classification), args.Error(1)
}

// MockNotificationPublisher is a mock type for the NotificationPublisher interface
type MockNotificationPublisher struct {
	mock.Mock
}

func (m *MockNotificationPublisher) Publish(ctx context.Context, topic string, payload any) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

func (m *MockNotificationPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
