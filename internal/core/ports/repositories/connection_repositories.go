package repositories

import (
	"context"
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
)

// ConnectionReader defines read operations for connection data.
type ConnectionReader interface {
	// FindConnectionByID retrieves a specific connection by its identifier.
	FindConnectionByID(ctx context.Context, connectionID string) (*domain.Connection, error)

	// FindConnectionByInstitution retrieves the non-retired connection for a
	// (user, institution, provider) triple, if one exists.
	FindConnectionByInstitution(ctx context.Context, userID, institutionID, provider string) (*domain.Connection, error)

	// ListActiveConnections retrieves all active connections for a user.
	ListActiveConnections(ctx context.Context, userID string) ([]domain.Connection, error)

	// ListSyncableConnections retrieves every active connection not in a
	// blocked error state, for the background sync schedule.
	ListSyncableConnections(ctx context.Context) ([]domain.Connection, error)
}

// ConnectionWriter defines write operations for connection data.
type ConnectionWriter interface {
	// SaveConnection persists a new connection.
	SaveConnection(ctx context.Context, conn domain.Connection) error

	// UpdateCredential replaces the credential reference and clears the
	// error state after a user re-link.
	UpdateCredential(ctx context.Context, connectionID, credentialRef, userID string, now time.Time) error

	// DeactivateConnection soft-deletes a connection and deactivates all of
	// its accounts within one storage transaction.
	DeactivateConnection(ctx context.Context, connectionID, userID string, now time.Time) error
}

// ConnectionSyncSupport defines the orchestrator's serialization point.
type ConnectionSyncSupport interface {
	// TryBeginSync atomically transitions the connection from IDLE to
	// RUNNING and bumps the sync-attempt sequence. It returns the new
	// sequence number, apperrors.ErrSyncAlreadyRunning if another sync holds
	// the connection, or apperrors.ErrConnectionBlocked if a re-link is
	// required first.
	TryBeginSync(ctx context.Context, connectionID string, now time.Time) (int64, error)

	// RecordSyncResult applies the terminal outcome of one sync run. The
	// update only takes effect while seq is still the connection's current
	// sequence, so a stale, delayed run can never overwrite a newer result.
	RecordSyncResult(ctx context.Context, connectionID string, seq int64, result domain.ConnectionSyncResult) error
}

// ConnectionRepositoryFacade combines all connection repository interfaces.
type ConnectionRepositoryFacade interface {
	ConnectionReader
	ConnectionWriter
	ConnectionSyncSupport
}
