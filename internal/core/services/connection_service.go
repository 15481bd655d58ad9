package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/core/ports"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
)

// ConnectionService manages the link and re-link lifecycle of bank
// connections.
type ConnectionService struct {
	BaseService
	connRepo portsrepo.ConnectionRepositoryFacade
	provider ports.BankDataProvider
	sync     portssvc.SyncSvcFacade
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(connRepo portsrepo.ConnectionRepositoryFacade, provider ports.BankDataProvider, sync portssvc.SyncSvcFacade) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		provider: provider,
		sync:     sync,
	}
}

var _ portssvc.ConnectionSvcFacade = (*ConnectionService)(nil)

// CreateLinkToken starts the provider link flow for a user.
func (s *ConnectionService) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	token, err := s.provider.CreateLinkToken(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to create link token", slog.String("user_id", userID))
		return "", err
	}
	return token, nil
}

// ExchangeToken trades a public token for a durable credential and creates
// the connection, or re-links an existing one for the same institution.
func (s *ConnectionService) ExchangeToken(ctx context.Context, userID, publicToken string) (*domain.Connection, error) {
	exchanged, err := s.provider.ExchangeToken(ctx, publicToken)
	if err != nil {
		s.LogError(ctx, err, "Token exchange failed", slog.String("user_id", userID))
		return nil, err
	}

	now := time.Now().UTC()

	existing, err := s.connRepo.FindConnectionByInstitution(ctx, userID, exchanged.InstitutionID, s.provider.Name())
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		// Re-link in place: swap the credential and clear the error state
		// instead of creating a duplicate connection.
		if err := s.connRepo.UpdateCredential(ctx, existing.ConnectionID, exchanged.CredentialRef, userID, now); err != nil {
			s.LogError(ctx, err, "Failed to re-link connection", slog.String("connection_id", existing.ConnectionID))
			return nil, err
		}
		s.LogInfo(ctx, "Connection re-linked",
			slog.String("connection_id", existing.ConnectionID),
			slog.String("institution_id", exchanged.InstitutionID))
		s.startInitialSync(ctx, existing.ConnectionID)
		return s.connRepo.FindConnectionByID(ctx, existing.ConnectionID)
	}

	conn := domain.Connection{
		ConnectionID:    uuid.NewString(),
		UserID:          userID,
		Provider:        s.provider.Name(),
		InstitutionID:   exchanged.InstitutionID,
		InstitutionName: exchanged.InstitutionName,
		CredentialRef:   exchanged.CredentialRef,
		SyncState:       domain.SyncStateIdle,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.connRepo.SaveConnection(ctx, conn); err != nil {
		s.LogError(ctx, err, "Failed to save connection", slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Connection created",
		slog.String("connection_id", conn.ConnectionID),
		slog.String("institution_id", conn.InstitutionID))

	s.startInitialSync(ctx, conn.ConnectionID)
	return &conn, nil
}

// startInitialSync kicks off the first sync in the background so linking
// returns immediately. The detached context outlives the HTTP request.
func (s *ConnectionService) startInitialSync(ctx context.Context, connectionID string) {
	if s.sync == nil {
		return
	}
	go s.sync.Sync(context.WithoutCancel(ctx), connectionID, true)
}

// GetConnection retrieves one of the user's connections. Connections owned
// by other users are reported as not found.
func (s *ConnectionService) GetConnection(ctx context.Context, userID, connectionID string) (*domain.Connection, error) {
	conn, err := s.connRepo.FindConnectionByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.UserID != userID || !conn.IsActive {
		return nil, apperrors.ErrNotFound
	}
	return conn, nil
}

// ListConnections retrieves the user's active connections.
func (s *ConnectionService) ListConnections(ctx context.Context, userID string) ([]domain.Connection, error) {
	return s.connRepo.ListActiveConnections(ctx, userID)
}

// RemoveConnection soft-deletes a connection and its accounts. Transaction
// history stays readable.
func (s *ConnectionService) RemoveConnection(ctx context.Context, userID, connectionID string) error {
	conn, err := s.GetConnection(ctx, userID, connectionID)
	if err != nil {
		return err
	}
	if err := s.connRepo.DeactivateConnection(ctx, conn.ConnectionID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to remove connection", slog.String("connection_id", connectionID))
		return err
	}
	s.LogInfo(ctx, "Connection removed", slog.String("connection_id", connectionID))
	return nil
}
