package dto

import (
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
)

// LinkTokenResponse starts the provider link flow on the client.
type LinkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

// ExchangeTokenRequest trades a link-flow public token for a connection.
type ExchangeTokenRequest struct {
	PublicToken string `json:"publicToken" binding:"required"`
}

// ConnectionResponse is the API representation of a bank connection.
type ConnectionResponse struct {
	ConnectionID    string     `json:"connectionID"`
	Provider        string     `json:"provider"`
	InstitutionID   string     `json:"institutionID"`
	InstitutionName string     `json:"institutionName"`
	SyncState       string     `json:"syncState"`
	IsActive        bool       `json:"isActive"`
	LastSyncAt      *time.Time `json:"lastSyncAt,omitempty"`
	ErrorCode       string     `json:"errorCode,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	RelinkRequired  bool       `json:"relinkRequired"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ToConnectionResponse maps a domain connection to its API shape.
func ToConnectionResponse(c domain.Connection) ConnectionResponse {
	return ConnectionResponse{
		ConnectionID:    c.ConnectionID,
		Provider:        c.Provider,
		InstitutionID:   c.InstitutionID,
		InstitutionName: c.InstitutionName,
		SyncState:       string(c.SyncState),
		IsActive:        c.IsActive,
		LastSyncAt:      c.LastSyncAt,
		ErrorCode:       c.ErrorCode,
		ErrorMessage:    c.ErrorMessage,
		RelinkRequired:  c.Blocked(),
		CreatedAt:       c.CreatedAt,
	}
}

// ToConnectionResponses maps a slice of domain connections.
func ToConnectionResponses(conns []domain.Connection) []ConnectionResponse {
	out := make([]ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		out = append(out, ToConnectionResponse(c))
	}
	return out
}
