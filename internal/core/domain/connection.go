package domain

import "time"

// SyncState tracks the orchestrator's per-connection state machine.
type SyncState string

const (
	SyncStateIdle    SyncState = "IDLE"
	SyncStateRunning SyncState = "RUNNING"
	SyncStateError   SyncState = "ERROR"
)

// Error codes recorded on a connection after a failed sync.
const (
	ErrCodeRelinkRequired      = "RELINK_REQUIRED"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderRateLimited = "PROVIDER_RATE_LIMITED"
	ErrCodeSyncTimeout         = "SYNC_TIMEOUT"
	ErrCodeSyncFailed          = "SYNC_FAILED"
)

// Connection represents one link between a user and an external institution.
type Connection struct {
	ConnectionID    string     `json:"connectionID"`
	UserID          string     `json:"userID"`
	Provider        string     `json:"provider"`
	InstitutionID   string     `json:"institutionID"`
	InstitutionName string     `json:"institutionName"`
	CredentialRef   string     `json:"-"` // opaque reference to the stored provider credential
	Cursor          string     `json:"-"` // provider cursor for incremental transaction fetch
	SyncState       SyncState  `json:"syncState"`
	SyncSeq         int64      `json:"-"` // monotonic sync-attempt sequence
	IsActive        bool       `json:"isActive"`
	LastSyncAt      *time.Time `json:"lastSyncAt"`
	ErrorCode       string     `json:"errorCode,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	AuditFields
}

// Blocked reports whether the connection requires a user re-link before
// any further sync may run.
func (c Connection) Blocked() bool {
	return c.SyncState == SyncStateError && c.ErrorCode == ErrCodeRelinkRequired
}

// ConnectionSyncResult describes the terminal outcome of one orchestrated
// sync run, applied to the connection row by RecordSyncResult.
type ConnectionSyncResult struct {
	State        SyncState // IDLE on success or transient failure, ERROR when blocked or timed out
	LastSyncAt   *time.Time
	Cursor       *string // replaces the stored cursor when non-nil
	ErrorCode    string
	ErrorMessage string
}
