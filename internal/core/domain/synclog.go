package domain

import "time"

// SyncType identifies which reconciliation phase a sync log row covers.
type SyncType string

const (
	SyncTypeAccounts     SyncType = "accounts"
	SyncTypeTransactions SyncType = "transactions"
)

// SyncStatus is the terminal status of one sync attempt.
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusError   SyncStatus = "error"
)

// SyncLog is an append-only audit record for one sync attempt on one
// connection. Item counts are only meaningful when Status is success.
type SyncLog struct {
	SyncLogID    string     `json:"syncLogID"`
	ConnectionID string     `json:"connectionID"`
	SyncType     SyncType   `json:"syncType"`
	Status       SyncStatus `json:"status"`
	NewItems     int        `json:"newItems"`
	UpdatedItems int        `json:"updatedItems"`
	SkippedItems int        `json:"skippedItems"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  time.Time  `json:"completedAt"`
}
