package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/core/ports"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

// fallbackCategory is stored when the categorizer cannot classify a
// description. Matches the categorizer's own default label.
const fallbackCategory = "Other"

// TransactionReconciler merges provider transaction snapshots into internal
// records, keyed by (account id, external transaction id). New transactions
// are categorized once at creation; subsequent syncs never re-derive the
// category, so user corrections survive reconciliation.
type TransactionReconciler struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	categorizer     ports.Categorizer
	spendIsPositive bool
}

// NewTransactionReconciler creates a new TransactionReconciler.
// spendIsPositive encodes the provider's amount sign convention.
func NewTransactionReconciler(transactionRepo portsrepo.TransactionRepositoryFacade, categorizer ports.Categorizer, spendIsPositive bool) *TransactionReconciler {
	return &TransactionReconciler{
		transactionRepo: transactionRepo,
		categorizer:     categorizer,
		spendIsPositive: spendIsPositive,
	}
}

// Reconcile applies one snapshot page inside a single unit of work.
// Snapshots whose account is unknown are skipped and counted, not fatal:
// they resolve once a later account sync catches up. Replaying an identical
// page produces zero created and zero updated rows.
func (r *TransactionReconciler) Reconcile(ctx context.Context, conn domain.Connection, accountsByExternalID map[string]domain.Account, snapshots []domain.TransactionSnapshot) (ReconcileResult, error) {
	var result ReconcileResult
	if len(snapshots) == 0 {
		return result, nil
	}

	for _, snap := range snapshots {
		if err := snap.Validate(); err != nil {
			return result, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	tx, err := r.transactionRepo.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer r.transactionRepo.Rollback(ctx, tx)

	now := time.Now().UTC()

	for _, snap := range snapshots {
		account, ok := accountsByExternalID[snap.ExternalAccountID]
		if !ok {
			r.LogWarn(ctx, "Orphaned transaction snapshot, account not yet synced",
				slog.String("connection_id", conn.ConnectionID),
				slog.String("external_account_id", snap.ExternalAccountID),
				slog.String("external_transaction_id", snap.ExternalID))
			result.Skipped++
			continue
		}

		existing, err := r.transactionRepo.FindTransactionByExternalIDInTx(ctx, tx, account.AccountID, snap.ExternalID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return ReconcileResult{}, fmt.Errorf("failed to look up transaction %s: %w", snap.ExternalID, err)
		}

		if existing == nil {
			txn := r.newTransactionFromSnapshot(ctx, conn, account, snap, now)
			if err := r.transactionRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
				return ReconcileResult{}, fmt.Errorf("failed to save transaction %s: %w", snap.ExternalID, err)
			}
			result.Created++
			continue
		}

		if transactionUnchanged(*existing, snap) {
			continue
		}

		// A pending transaction reappearing as settled lands here: amount,
		// description and the pending flag are brought up to date while the
		// category, user-set or not, stays untouched.
		existing.Amount = snap.Amount
		existing.Description = snap.Description
		existing.MerchantName = snap.MerchantName
		existing.Pending = snap.Pending
		existing.Direction = domain.DirectionForAmount(snap.Amount, r.spendIsPositive)
		existing.LastUpdatedAt = now
		existing.LastUpdatedBy = conn.UserID
		if err := r.transactionRepo.UpdateTransactionInTx(ctx, tx, *existing); err != nil {
			return ReconcileResult{}, fmt.Errorf("failed to update transaction %s: %w", existing.TransactionID, err)
		}
		result.Updated++
	}

	if err := r.transactionRepo.Commit(ctx, tx); err != nil {
		return ReconcileResult{}, err
	}

	r.LogDebug(ctx, "Transaction batch reconciled",
		slog.String("connection_id", conn.ConnectionID),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func (r *TransactionReconciler) newTransactionFromSnapshot(ctx context.Context, conn domain.Connection, account domain.Account, snap domain.TransactionSnapshot, now time.Time) domain.Transaction {
	text := strings.TrimSpace(snap.Description + " " + snap.MerchantName)
	cls, err := r.categorizer.Classify(ctx, text)
	if err != nil {
		// Classification is best effort; an unclassified transaction is
		// still worth storing.
		r.LogWarn(ctx, "Categorizer failed, storing fallback category",
			slog.String("external_transaction_id", snap.ExternalID),
			slog.String("error", err.Error()))
		cls = ports.Classification{Category: fallbackCategory}
	}

	return domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     account.AccountID,
		UserID:        conn.UserID,
		ExternalID:    snap.ExternalID,
		Amount:        snap.Amount,
		Date:          snap.Date,
		Description:   snap.Description,
		MerchantName:  snap.MerchantName,
		Category:      cls.Category,
		Subcategory:   cls.Subcategory,
		Pending:       snap.Pending,
		Direction:     domain.DirectionForAmount(snap.Amount, r.spendIsPositive),
		RawPayload:    snap.Raw,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     conn.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: conn.UserID,
		},
	}
}

func transactionUnchanged(t domain.Transaction, snap domain.TransactionSnapshot) bool {
	return t.Amount.Equal(snap.Amount) &&
		t.Description == snap.Description &&
		t.MerchantName == snap.MerchantName &&
		t.Pending == snap.Pending
}
