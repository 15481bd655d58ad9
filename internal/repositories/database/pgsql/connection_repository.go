package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

type PgxConnectionRepository struct {
	BaseRepository
}

// newPgxConnectionRepository creates a new repository for connection data.
func newPgxConnectionRepository(pool *pgxpool.Pool) portsrepo.ConnectionRepositoryFacade {
	return &PgxConnectionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ConnectionRepositoryFacade = (*PgxConnectionRepository)(nil)

const connectionColumns = `
	connection_id, user_id, provider, institution_id, institution_name,
	credential_ref, cursor, sync_state, sync_seq, is_active, last_sync_at,
	error_code, error_message, created_at, created_by, last_updated_at, last_updated_by
`

func scanConnection(row pgx.Row) (*domain.Connection, error) {
	var conn domain.Connection
	var lastSyncAt sql.NullTime
	var errorCode, errorMessage sql.NullString

	err := row.Scan(
		&conn.ConnectionID,
		&conn.UserID,
		&conn.Provider,
		&conn.InstitutionID,
		&conn.InstitutionName,
		&conn.CredentialRef,
		&conn.Cursor,
		&conn.SyncState,
		&conn.SyncSeq,
		&conn.IsActive,
		&lastSyncAt,
		&errorCode,
		&errorMessage,
		&conn.CreatedAt,
		&conn.CreatedBy,
		&conn.LastUpdatedAt,
		&conn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if lastSyncAt.Valid {
		conn.LastSyncAt = &lastSyncAt.Time
	}
	conn.ErrorCode = errorCode.String
	conn.ErrorMessage = errorMessage.String
	return &conn, nil
}

// SaveConnection inserts a new connection.
func (r *PgxConnectionRepository) SaveConnection(ctx context.Context, conn domain.Connection) error {
	query := `
		INSERT INTO connections (connection_id, user_id, provider, institution_id, institution_name, credential_ref, cursor, sync_state, sync_seq, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		conn.ConnectionID,
		conn.UserID,
		conn.Provider,
		conn.InstitutionID,
		conn.InstitutionName,
		conn.CredentialRef,
		conn.Cursor,
		conn.SyncState,
		conn.SyncSeq,
		conn.IsActive,
		conn.CreatedAt,
		conn.CreatedBy,
		conn.LastUpdatedAt,
		conn.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: connection with ID %s already exists", apperrors.ErrDuplicate, conn.ConnectionID)
		}
		return fmt.Errorf("failed to save connection %s: %w", conn.ConnectionID, err)
	}
	return nil
}

// FindConnectionByID retrieves a connection by its ID.
func (r *PgxConnectionRepository) FindConnectionByID(ctx context.Context, connectionID string) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE connection_id = $1;`
	conn, err := scanConnection(r.Pool.QueryRow(ctx, query, connectionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find connection by ID %s: %w", connectionID, err)
	}
	return conn, nil
}

// FindConnectionByInstitution retrieves the active connection for a
// (user, institution, provider) triple.
func (r *PgxConnectionRepository) FindConnectionByInstitution(ctx context.Context, userID, institutionID, provider string) (*domain.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE user_id = $1 AND institution_id = $2 AND provider = $3 AND is_active = TRUE;
	`
	conn, err := scanConnection(r.Pool.QueryRow(ctx, query, userID, institutionID, provider))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find connection for institution %s: %w", institutionID, err)
	}
	return conn, nil
}

// ListActiveConnections retrieves all active connections for a user.
func (r *PgxConnectionRepository) ListActiveConnections(ctx context.Context, userID string) ([]domain.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectConnections(rows)
}

// ListSyncableConnections retrieves every active connection eligible for the
// background schedule. Connections parked in ERROR wait for a manual retry
// or re-link.
func (r *PgxConnectionRepository) ListSyncableConnections(ctx context.Context) ([]domain.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE is_active = TRUE AND sync_state = 'IDLE'
		ORDER BY last_sync_at NULLS FIRST;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list syncable connections: %w", err)
	}
	defer rows.Close()

	return collectConnections(rows)
}

func collectConnections(rows pgx.Rows) ([]domain.Connection, error) {
	var conns []domain.Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection row: %w", err)
		}
		conns = append(conns, *conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connection rows: %w", err)
	}
	return conns, nil
}

// UpdateCredential replaces the credential reference after a re-link and
// clears the connection's error state so syncing may resume.
func (r *PgxConnectionRepository) UpdateCredential(ctx context.Context, connectionID, credentialRef, userID string, now time.Time) error {
	query := `
		UPDATE connections
		SET credential_ref = $2,
		    sync_state = 'IDLE',
		    error_code = NULL,
		    error_message = NULL,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE connection_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, connectionID, credentialRef, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update credential for connection %s: %w", connectionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateConnection soft-deletes a connection and its accounts in one
// transaction. Transactions under those accounts are kept.
func (r *PgxConnectionRepository) DeactivateConnection(ctx context.Context, connectionID, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	connQuery := `
		UPDATE connections
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE connection_id = $1 AND is_active = TRUE;
	`
	tag, err := tx.Exec(ctx, connQuery, connectionID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate connection %s: %w", connectionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	accountQuery := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE connection_id = $1 AND is_active = TRUE;
	`
	if _, err := tx.Exec(ctx, accountQuery, connectionID, now, userID); err != nil {
		return fmt.Errorf("failed to deactivate accounts for connection %s: %w", connectionID, err)
	}

	return r.Commit(ctx, tx)
}

// TryBeginSync atomically claims the connection for one sync run. The state
// predicate in the WHERE clause is the whole mutual exclusion story: only
// one caller can move the row out of IDLE, everyone else sees zero rows.
func (r *PgxConnectionRepository) TryBeginSync(ctx context.Context, connectionID string, now time.Time) (int64, error) {
	query := `
		UPDATE connections
		SET sync_state = 'RUNNING', sync_seq = sync_seq + 1, last_updated_at = $2
		WHERE connection_id = $1
		  AND is_active = TRUE
		  AND sync_state IN ('IDLE', 'ERROR')
		  AND (error_code IS NULL OR error_code <> 'RELINK_REQUIRED')
		RETURNING sync_seq;
	`
	var seq int64
	err := r.Pool.QueryRow(ctx, query, connectionID, now).Scan(&seq)
	if err == nil {
		return seq, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to begin sync for connection %s: %w", connectionID, err)
	}

	// Zero rows: distinguish running from blocked for the caller.
	conn, ferr := r.FindConnectionByID(ctx, connectionID)
	if ferr != nil {
		return 0, ferr
	}
	if conn.SyncState == domain.SyncStateRunning {
		return 0, apperrors.ErrSyncAlreadyRunning
	}
	return 0, apperrors.ErrConnectionBlocked
}

// RecordSyncResult applies a sync run's terminal outcome, guarded by the
// sequence number so a stale run cannot clobber a newer one.
func (r *PgxConnectionRepository) RecordSyncResult(ctx context.Context, connectionID string, seq int64, result domain.ConnectionSyncResult) error {
	query := `
		UPDATE connections
		SET sync_state = $3,
		    last_sync_at = COALESCE($4, last_sync_at),
		    cursor = COALESCE($5, cursor),
		    error_code = NULLIF($6, ''),
		    error_message = NULLIF($7, ''),
		    last_updated_at = NOW()
		WHERE connection_id = $1 AND sync_seq = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		connectionID,
		seq,
		result.State,
		result.LastSyncAt,
		result.Cursor,
		result.ErrorCode,
		result.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync result for connection %s: %w", connectionID, err)
	}
	if tag.RowsAffected() == 0 {
		// A newer sync bumped the sequence; this run's outcome is stale.
		return apperrors.ErrNotFound
	}
	return nil
}
