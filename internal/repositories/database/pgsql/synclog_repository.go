package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

type PgxSyncLogRepository struct {
	BaseRepository
}

// newPgxSyncLogRepository creates a new repository for sync audit rows.
func newPgxSyncLogRepository(pool *pgxpool.Pool) portsrepo.SyncLogRepositoryFacade {
	return &PgxSyncLogRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.SyncLogRepositoryFacade = (*PgxSyncLogRepository)(nil)

// SaveSyncLog appends one completed sync attempt.
func (r *PgxSyncLogRepository) SaveSyncLog(ctx context.Context, log domain.SyncLog) error {
	query := `
		INSERT INTO sync_logs (sync_log_id, connection_id, sync_type, status, new_items, updated_items, skipped_items, error_message, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		log.SyncLogID,
		log.ConnectionID,
		log.SyncType,
		log.Status,
		log.NewItems,
		log.UpdatedItems,
		log.SkippedItems,
		log.ErrorMessage,
		log.StartedAt,
		log.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sync log for connection %s: %w", log.ConnectionID, err)
	}
	return nil
}

// ListSyncLogs retrieves the most recent attempts for a connection, newest
// first.
func (r *PgxSyncLogRepository) ListSyncLogs(ctx context.Context, connectionID string, limit int) ([]domain.SyncLog, error) {
	query := `
		SELECT sync_log_id, connection_id, sync_type, status, new_items, updated_items, skipped_items, COALESCE(error_message, ''), started_at, completed_at
		FROM sync_logs
		WHERE connection_id = $1
		ORDER BY started_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, connectionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs for connection %s: %w", connectionID, err)
	}
	defer rows.Close()

	var logs []domain.SyncLog
	for rows.Next() {
		var log domain.SyncLog
		err := rows.Scan(
			&log.SyncLogID,
			&log.ConnectionID,
			&log.SyncType,
			&log.Status,
			&log.NewItems,
			&log.UpdatedItems,
			&log.SkippedItems,
			&log.ErrorMessage,
			&log.StartedAt,
			&log.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log row: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync log rows: %w", err)
	}
	return logs, nil
}
