package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ConnectionRepo:  newPgxConnectionRepository(dbPool),
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		SyncLogRepo:     newPgxSyncLogRepository(dbPool),
		BudgetRepo:      newPgxBudgetRepository(dbPool),
		AlertRepo:       newPgxAlertRepository(dbPool),
		ReportingRepo:   newReportingRepository(dbPool),
	}
}
