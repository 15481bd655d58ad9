package dto

// SyncRequest triggers a sync for one connection or all of a user's
// connections when ConnectionID is empty.
type SyncRequest struct {
	ConnectionID string `json:"connectionID,omitempty"`
	Force        bool   `json:"force,omitempty"`
}

// Sync outcome statuses.
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
	SyncStatusSkipped = "skipped"
)

// Skip reasons for SyncStatusSkipped outcomes.
const (
	SkipReasonTooRecent      = "too_recent"
	SkipReasonAlreadyRunning = "already_running"
)

// SyncSummary is the structured outcome of one orchestrated sync run.
// A sync request always returns one; provider failures surface here rather
// than as unhandled faults.
type SyncSummary struct {
	ConnectionID        string `json:"connectionID"`
	Status              string `json:"status"` // success, error or skipped
	SkipReason          string `json:"skipReason,omitempty"`
	ErrorCode           string `json:"errorCode,omitempty"`
	ErrorMessage        string `json:"errorMessage,omitempty"`
	NewAccounts         int    `json:"newAccounts"`
	UpdatedAccounts     int    `json:"updatedAccounts"`
	NewTransactions     int    `json:"newTransactions"`
	UpdatedTransactions int    `json:"updatedTransactions"`
	SkippedTransactions int    `json:"skippedTransactions"`
}
