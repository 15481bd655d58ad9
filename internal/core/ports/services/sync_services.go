package services

import (
	"context"

	"github.com/mintflow/syncd/internal/dto"
)

// SyncSvcFacade sequences account and transaction reconciliation per
// connection, enforcing per-connection mutual exclusion and the minimum
// re-sync interval.
type SyncSvcFacade interface {
	// Sync runs one orchestrated sync for a connection. It always returns a
	// structured outcome; provider failures are converted into an
	// error-status summary rather than propagated.
	Sync(ctx context.Context, connectionID string, force bool) dto.SyncSummary

	// SyncUser syncs one of the user's connections, or all of them when
	// connectionID is empty.
	SyncUser(ctx context.Context, userID, connectionID string, force bool) ([]dto.SyncSummary, error)
}
