package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/core/ports"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
	"github.com/mintflow/syncd/internal/dto"
)

// maxTransactionPages caps cursor-following within one run so a
// misbehaving provider cannot keep a connection RUNNING forever.
const maxTransactionPages = 20

// SyncOrchestratorOptions carries the tunables for sync runs.
type SyncOrchestratorOptions struct {
	MinInterval time.Duration // minimum gap between unforced syncs
	RunTimeout  time.Duration // overall deadline for one run
	Lookback    time.Duration // date range for initial (cursor-less) fetches
}

// SyncOrchestrator sequences account then transaction reconciliation per
// connection. The connection row's sync state is the sole serialization
// point: the repository's atomic IDLE to RUNNING transition guarantees at
// most one concurrent sync per connection, and a second request observes an
// already-running outcome instead of interleaving.
type SyncOrchestrator struct {
	BaseService
	connRepo     portsrepo.ConnectionRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	syncLogRepo  portsrepo.SyncLogRepositoryFacade
	provider     ports.BankDataProvider
	accounts     *AccountReconciler
	transactions *TransactionReconciler
	evaluator    portssvc.BudgetEvaluatorSvc
	dispatcher   portssvc.AlertDispatcherSvc
	opts         SyncOrchestratorOptions
}

// NewSyncOrchestrator creates a new SyncOrchestrator.
func NewSyncOrchestrator(
	connRepo portsrepo.ConnectionRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	syncLogRepo portsrepo.SyncLogRepositoryFacade,
	provider ports.BankDataProvider,
	accounts *AccountReconciler,
	transactions *TransactionReconciler,
	evaluator portssvc.BudgetEvaluatorSvc,
	dispatcher portssvc.AlertDispatcherSvc,
	opts SyncOrchestratorOptions,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		connRepo:     connRepo,
		accountRepo:  accountRepo,
		syncLogRepo:  syncLogRepo,
		provider:     provider,
		accounts:     accounts,
		transactions: transactions,
		evaluator:    evaluator,
		dispatcher:   dispatcher,
		opts:         opts,
	}
}

var _ portssvc.SyncSvcFacade = (*SyncOrchestrator)(nil)

// Sync runs one orchestrated sync for a connection and always returns a
// structured outcome. Unless force is set, a sync within the minimum
// re-sync interval of the last success is skipped as too recent.
func (o *SyncOrchestrator) Sync(ctx context.Context, connectionID string, force bool) dto.SyncSummary {
	summary := dto.SyncSummary{ConnectionID: connectionID, Status: dto.SyncStatusError}

	conn, err := o.connRepo.FindConnectionByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			summary.ErrorCode = "CONNECTION_NOT_FOUND"
			summary.ErrorMessage = "connection not found"
			return summary
		}
		o.LogError(ctx, err, "Failed to load connection for sync", slog.String("connection_id", connectionID))
		summary.ErrorCode = domain.ErrCodeSyncFailed
		summary.ErrorMessage = err.Error()
		return summary
	}

	if !conn.IsActive {
		summary.ErrorCode = "CONNECTION_INACTIVE"
		summary.ErrorMessage = "connection has been removed"
		return summary
	}
	if conn.Blocked() {
		summary.ErrorCode = domain.ErrCodeRelinkRequired
		summary.ErrorMessage = "reconnect required"
		return summary
	}
	if !force && conn.LastSyncAt != nil && time.Since(*conn.LastSyncAt) < o.opts.MinInterval {
		summary.Status = dto.SyncStatusSkipped
		summary.SkipReason = dto.SkipReasonTooRecent
		return summary
	}

	seq, err := o.connRepo.TryBeginSync(ctx, connectionID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSyncAlreadyRunning):
			summary.Status = dto.SyncStatusSkipped
			summary.SkipReason = dto.SkipReasonAlreadyRunning
		case errors.Is(err, apperrors.ErrConnectionBlocked):
			summary.ErrorCode = domain.ErrCodeRelinkRequired
			summary.ErrorMessage = "reconnect required"
		default:
			o.LogError(ctx, err, "Failed to acquire sync lock", slog.String("connection_id", connectionID))
			summary.ErrorCode = domain.ErrCodeSyncFailed
			summary.ErrorMessage = err.Error()
		}
		return summary
	}

	o.LogInfo(ctx, "Sync started",
		slog.String("connection_id", connectionID),
		slog.Int64("sync_seq", seq),
		slog.Bool("force", force))

	runCtx, cancel := context.WithTimeout(ctx, o.opts.RunTimeout)
	defer cancel()

	// Accounts reconcile first: transactions in the same pass resolve
	// against the accounts this phase creates.
	started := time.Now().UTC()
	snapshots, err := o.provider.FetchAccounts(runCtx, conn.CredentialRef)
	if err == nil {
		var res ReconcileResult
		res, err = o.accounts.Reconcile(runCtx, *conn, snapshots)
		if err == nil {
			summary.NewAccounts = res.Created
			summary.UpdatedAccounts = res.Updated
			o.writeSyncLog(ctx, conn.ConnectionID, domain.SyncTypeAccounts, res, started, nil)
		}
	}
	if err != nil {
		return o.failRun(ctx, conn, seq, summary, domain.SyncTypeAccounts, started, err)
	}

	// Transaction snapshots resolve against every account under the
	// connection, not just those in the current page.
	started = time.Now().UTC()
	accountsByExternalID, err := o.accountRepo.MapAccountsByExternalID(ctx, conn.ConnectionID)
	if err != nil {
		return o.failRun(ctx, conn, seq, summary, domain.SyncTypeTransactions, started, err)
	}

	now := time.Now().UTC()
	dateRange := ports.DateRange{Start: now.Add(-o.opts.Lookback), End: now}
	cursor := conn.Cursor
	var total ReconcileResult
	for page := 0; page < maxTransactionPages; page++ {
		pageResp, err := o.provider.FetchTransactions(runCtx, conn.CredentialRef, cursor, dateRange)
		if err != nil {
			o.writeSyncLog(ctx, conn.ConnectionID, domain.SyncTypeTransactions, total, started, err)
			return o.recordFailure(ctx, conn, seq, summary, err)
		}
		res, err := o.transactions.Reconcile(runCtx, *conn, accountsByExternalID, pageResp.Transactions)
		if err != nil {
			o.writeSyncLog(ctx, conn.ConnectionID, domain.SyncTypeTransactions, total, started, err)
			return o.recordFailure(ctx, conn, seq, summary, err)
		}
		total.Add(res)
		if pageResp.NextCursor != "" {
			cursor = pageResp.NextCursor
		}
		if !pageResp.HasMore {
			break
		}
	}
	summary.NewTransactions = total.Created
	summary.UpdatedTransactions = total.Updated
	summary.SkippedTransactions = total.Skipped
	o.writeSyncLog(ctx, conn.ConnectionID, domain.SyncTypeTransactions, total, started, nil)

	completed := time.Now().UTC()
	result := domain.ConnectionSyncResult{
		State:      domain.SyncStateIdle,
		LastSyncAt: &completed,
		Cursor:     &cursor,
	}
	if err := o.connRepo.RecordSyncResult(ctx, conn.ConnectionID, seq, result); err != nil {
		o.LogError(ctx, err, "Failed to record sync result", slog.String("connection_id", conn.ConnectionID))
	}
	summary.Status = dto.SyncStatusSuccess

	o.LogInfo(ctx, "Sync completed",
		slog.String("connection_id", conn.ConnectionID),
		slog.Int("new_accounts", summary.NewAccounts),
		slog.Int("updated_accounts", summary.UpdatedAccounts),
		slog.Int("new_transactions", summary.NewTransactions),
		slog.Int("updated_transactions", summary.UpdatedTransactions),
		slog.Int("skipped_transactions", summary.SkippedTransactions))

	// Alerts are a derived, eventually consistent view; evaluation runs
	// outside the reconciliation unit of work and must not fail the sync.
	o.evaluateBudgets(ctx, conn.UserID)

	return summary
}

// SyncUser syncs one of the user's connections, or all of them when
// connectionID is empty.
func (o *SyncOrchestrator) SyncUser(ctx context.Context, userID, connectionID string, force bool) ([]dto.SyncSummary, error) {
	if connectionID != "" {
		conn, err := o.connRepo.FindConnectionByID(ctx, connectionID)
		if err != nil {
			return nil, err
		}
		if conn.UserID != userID {
			// Obscure existence from other users.
			return nil, apperrors.ErrNotFound
		}
		return []dto.SyncSummary{o.Sync(ctx, connectionID, force)}, nil
	}

	conns, err := o.connRepo.ListActiveConnections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections for user %s: %w", userID, err)
	}
	summaries := make([]dto.SyncSummary, 0, len(conns))
	for _, conn := range conns {
		summaries = append(summaries, o.Sync(ctx, conn.ConnectionID, force))
	}
	return summaries, nil
}

// failRun logs the failed phase and records the run's terminal state.
func (o *SyncOrchestrator) failRun(ctx context.Context, conn *domain.Connection, seq int64, summary dto.SyncSummary, syncType domain.SyncType, started time.Time, cause error) dto.SyncSummary {
	o.writeSyncLog(ctx, conn.ConnectionID, syncType, ReconcileResult{}, started, cause)
	return o.recordFailure(ctx, conn, seq, summary, cause)
}

// recordFailure converts a sync failure into connection error state plus a
// structured outcome. Reconciler batches already committed stay committed;
// only the remaining work is abandoned.
func (o *SyncOrchestrator) recordFailure(ctx context.Context, conn *domain.Connection, seq int64, summary dto.SyncSummary, cause error) dto.SyncSummary {
	state := domain.SyncStateIdle
	var code string
	switch {
	case errors.Is(cause, apperrors.ErrProviderAuth):
		// Terminal until the user re-links; scheduled syncs short-circuit.
		state = domain.SyncStateError
		code = domain.ErrCodeRelinkRequired
	case errors.Is(cause, apperrors.ErrProviderRateLimited):
		code = domain.ErrCodeProviderRateLimited
	case errors.Is(cause, apperrors.ErrProviderUnavailable):
		code = domain.ErrCodeProviderUnavailable
	case errors.Is(cause, context.DeadlineExceeded):
		// The next attempt is a fresh run; committed batches are durable,
		// so no cursor rollback is needed.
		state = domain.SyncStateError
		code = domain.ErrCodeSyncTimeout
	default:
		code = domain.ErrCodeSyncFailed
	}

	result := domain.ConnectionSyncResult{
		State:        state,
		ErrorCode:    code,
		ErrorMessage: cause.Error(),
	}
	if err := o.connRepo.RecordSyncResult(ctx, conn.ConnectionID, seq, result); err != nil {
		o.LogError(ctx, err, "Failed to record sync failure", slog.String("connection_id", conn.ConnectionID))
	}

	o.LogError(ctx, cause, "Sync failed",
		slog.String("connection_id", conn.ConnectionID),
		slog.String("error_code", code))

	summary.Status = dto.SyncStatusError
	summary.ErrorCode = code
	summary.ErrorMessage = cause.Error()
	return summary
}

// writeSyncLog appends one audit row for a sync phase. Item counts are only
// recorded on success; a failed provider call never fabricates them.
func (o *SyncOrchestrator) writeSyncLog(ctx context.Context, connectionID string, syncType domain.SyncType, res ReconcileResult, started time.Time, cause error) {
	entry := domain.SyncLog{
		SyncLogID:    uuid.NewString(),
		ConnectionID: connectionID,
		SyncType:     syncType,
		Status:       domain.SyncStatusSuccess,
		NewItems:     res.Created,
		UpdatedItems: res.Updated,
		SkippedItems: res.Skipped,
		StartedAt:    started,
		CompletedAt:  time.Now().UTC(),
	}
	if cause != nil {
		entry.Status = domain.SyncStatusError
		entry.ErrorMessage = cause.Error()
		entry.NewItems = 0
		entry.UpdatedItems = 0
		entry.SkippedItems = 0
	}
	if err := o.syncLogRepo.SaveSyncLog(ctx, entry); err != nil {
		o.LogError(ctx, err, "Failed to write sync log",
			slog.String("connection_id", connectionID),
			slog.String("sync_type", string(syncType)))
	}
}

func (o *SyncOrchestrator) evaluateBudgets(ctx context.Context, userID string) {
	if o.evaluator == nil {
		return
	}
	fired, err := o.evaluator.Evaluate(ctx, userID)
	if err != nil {
		o.LogError(ctx, err, "Budget evaluation failed after sync", slog.String("user_id", userID))
		return
	}
	if o.dispatcher == nil {
		return
	}
	for _, alert := range fired {
		o.dispatcher.Dispatch(ctx, alert)
	}
}
