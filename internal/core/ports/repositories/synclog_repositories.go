package repositories

import (
	"context"

	"github.com/mintflow/syncd/internal/core/domain"
)

// SyncLogRepositoryFacade persists the append-only sync audit trail.
type SyncLogRepositoryFacade interface {
	// SaveSyncLog appends one completed sync attempt. Rows are never
	// mutated afterwards.
	SaveSyncLog(ctx context.Context, log domain.SyncLog) error

	// ListSyncLogs retrieves the most recent attempts for a connection,
	// newest first.
	ListSyncLogs(ctx context.Context, connectionID string, limit int) ([]domain.SyncLog, error)
}
