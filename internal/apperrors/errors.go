package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Provider error taxonomy. The sync pipeline treats ErrProviderAuth as
// terminal until the user re-links; the other two are transient and eligible
// for the next scheduled retry.
var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderAuth        = errors.New("provider credential revoked or expired")
	ErrProviderRateLimited = errors.New("provider rate limited")
)

// Sync coordination errors.
var (
	// ErrSyncAlreadyRunning means another sync holds the connection's
	// execution right; the caller's request is a no-op, never queued.
	ErrSyncAlreadyRunning = errors.New("sync already running for connection")

	// ErrConnectionBlocked means the connection is in a blocked error state
	// and requires a user re-link before syncing again.
	ErrConnectionBlocked = errors.New("connection requires re-link")
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
