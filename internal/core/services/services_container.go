package services

import (
	"time"

	"github.com/mintflow/syncd/internal/core/ports"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
	"github.com/mintflow/syncd/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	provider ports.BankDataProvider,
	categorizer ports.Categorizer,
	publisher ports.NotificationPublisher,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Alerting first: the sync orchestrator fires alerts after each run.
	container.Evaluator = NewBudgetEvaluator(
		repos.BudgetRepo,
		repos.TransactionRepo,
		repos.AlertRepo,
		cfg.AlertThresholds,
		cfg.SpendIsPositive,
	)
	dispatcher := NewAlertDispatcher(repos.AlertRepo, publisher, cfg.NotificationTopic)

	accountReconciler := NewAccountReconciler(repos.AccountRepo)
	transactionReconciler := NewTransactionReconciler(repos.TransactionRepo, categorizer, cfg.SpendIsPositive)

	container.Sync = NewSyncOrchestrator(
		repos.ConnectionRepo,
		repos.AccountRepo,
		repos.SyncLogRepo,
		provider,
		accountReconciler,
		transactionReconciler,
		container.Evaluator,
		dispatcher,
		SyncOrchestratorOptions{
			MinInterval: cfg.SyncMinInterval,
			RunTimeout:  cfg.SyncRunTimeout,
			Lookback:    time.Duration(cfg.SyncLookbackDays) * 24 * time.Hour,
		},
	)

	container.Connection = NewConnectionService(repos.ConnectionRepo, provider, container.Sync)
	container.Account = NewAccountService(repos.AccountRepo)
	container.Transaction = NewTransactionService(repos.TransactionRepo, repos.AccountRepo)
	container.Budget = NewBudgetService(repos.BudgetRepo, repos.TransactionRepo, cfg.SpendIsPositive)
	container.Reporting = NewReportingService(repos.ReportingRepo, cfg.SpendIsPositive)

	return container
}
