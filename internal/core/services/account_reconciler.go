package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// ReconcileResult counts the effect of one reconciliation batch.
type ReconcileResult struct {
	Created int
	Updated int
	Skipped int
}

// Add accumulates another batch's counts, for multi-page runs.
func (r *ReconcileResult) Add(other ReconcileResult) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped += other.Skipped
}

// AccountReconciler merges provider account snapshots into internal account
// records, keyed by (connection id, external account id).
type AccountReconciler struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountReconciler creates a new AccountReconciler.
func NewAccountReconciler(accountRepo portsrepo.AccountRepositoryFacade) *AccountReconciler {
	return &AccountReconciler{accountRepo: accountRepo}
}

// Reconcile applies one snapshot batch inside a single unit of work: either
// every snapshot is applied or none are. Balances are always replaced with
// the provider's latest values; the provider is authoritative for current
// state. Accounts absent from the batch are left untouched, since providers
// may paginate or omit inactive accounts and absence is not evidence of
// closure. Replaying an identical batch is a no-op.
func (r *AccountReconciler) Reconcile(ctx context.Context, conn domain.Connection, snapshots []domain.AccountSnapshot) (ReconcileResult, error) {
	var result ReconcileResult
	if len(snapshots) == 0 {
		return result, nil
	}

	// A malformed snapshot is a provider contract violation; abort before
	// any write so the batch stays all-or-nothing.
	for _, snap := range snapshots {
		if err := snap.Validate(); err != nil {
			return result, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	tx, err := r.accountRepo.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer r.accountRepo.Rollback(ctx, tx)

	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(snapshots))

	for _, snap := range snapshots {
		if _, dup := seen[snap.ExternalID]; dup {
			// Two snapshots in one page claiming the same external id: the
			// later one wins through the ordinary update path.
			r.LogWarn(ctx, "Duplicate account snapshot in batch, later snapshot wins",
				slog.String("connection_id", conn.ConnectionID),
				slog.String("external_account_id", snap.ExternalID))
		}
		seen[snap.ExternalID] = struct{}{}

		existing, err := r.accountRepo.FindAccountByExternalIDInTx(ctx, tx, conn.ConnectionID, snap.ExternalID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return ReconcileResult{}, fmt.Errorf("failed to look up account %s: %w", snap.ExternalID, err)
		}

		if existing == nil {
			account := newAccountFromSnapshot(conn, snap, now)
			if err := r.accountRepo.SaveAccountInTx(ctx, tx, account); err != nil {
				return ReconcileResult{}, fmt.Errorf("failed to save account %s: %w", snap.ExternalID, err)
			}
			result.Created++
			continue
		}

		if accountUnchanged(*existing, snap) {
			continue
		}

		existing.CurrentBalance = snap.CurrentBalance
		existing.AvailableBalance = snap.AvailableBalance
		existing.CreditLimit = creditLimitOrZero(snap.CreditLimit)
		existing.LastSyncAt = now
		existing.LastUpdatedAt = now
		existing.LastUpdatedBy = conn.UserID
		if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, *existing); err != nil {
			return ReconcileResult{}, fmt.Errorf("failed to update account %s: %w", existing.AccountID, err)
		}
		result.Updated++
	}

	if err := r.accountRepo.Commit(ctx, tx); err != nil {
		return ReconcileResult{}, err
	}

	r.LogDebug(ctx, "Account batch reconciled",
		slog.String("connection_id", conn.ConnectionID),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated))
	return result, nil
}

func newAccountFromSnapshot(conn domain.Connection, snap domain.AccountSnapshot, now time.Time) domain.Account {
	currency := snap.CurrencyCode
	if currency == "" {
		currency = "USD"
	}
	return domain.Account{
		AccountID:        uuid.NewString(),
		ConnectionID:     conn.ConnectionID,
		UserID:           conn.UserID,
		ExternalID:       snap.ExternalID,
		Name:             snap.Name,
		OfficialName:     snap.OfficialName,
		AccountType:      snap.Type,
		Subtype:          snap.Subtype,
		Mask:             snap.Mask,
		CurrentBalance:   snap.CurrentBalance,
		AvailableBalance: snap.AvailableBalance,
		CreditLimit:      creditLimitOrZero(snap.CreditLimit),
		CurrencyCode:     currency,
		IsActive:         true,
		LastSyncAt:       now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     conn.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: conn.UserID,
		},
	}
}

func accountUnchanged(a domain.Account, snap domain.AccountSnapshot) bool {
	return a.CurrentBalance.Equal(snap.CurrentBalance) &&
		a.AvailableBalance.Equal(snap.AvailableBalance) &&
		a.CreditLimit.Equal(creditLimitOrZero(snap.CreditLimit))
}

func creditLimitOrZero(limit *decimal.Decimal) decimal.Decimal {
	if limit == nil {
		return decimal.Zero
	}
	return *limit
}
