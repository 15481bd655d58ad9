package services

import (
	"context"

	"github.com/mintflow/syncd/internal/core/domain"
)

// ConnectionSvcFacade owns per-user bank connection records: linking,
// lookup and soft removal.
type ConnectionSvcFacade interface {
	// CreateLinkToken starts the provider link flow for a user.
	CreateLinkToken(ctx context.Context, userID string) (string, error)

	// ExchangeToken trades a link-flow public token for a connection. If the
	// user already has an active connection for the same (institution,
	// provider) pair, the existing connection is re-linked in place: its
	// credential is replaced and its error state cleared, so no duplicate is
	// created for an already-linked institution.
	ExchangeToken(ctx context.Context, userID, publicToken string) (*domain.Connection, error)

	// GetConnection retrieves one of the user's connections.
	GetConnection(ctx context.Context, userID, connectionID string) (*domain.Connection, error)

	// ListConnections retrieves the user's active connections.
	ListConnections(ctx context.Context, userID string) ([]domain.Connection, error)

	// RemoveConnection soft-deletes a connection and cascades deactivation
	// to its accounts. Transaction history is never deleted.
	RemoveConnection(ctx context.Context, userID, connectionID string) error
}
