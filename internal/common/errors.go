// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Filesystem operation errors.
	ErrPermissionDenied = errors.New("permission denied")
	ErrTargetExists     = errors.New("target file already exists")
	ErrSourceNotFound   = errors.New("source file not found")
	ErrUnknownOperation = errors.New("unknown operation kind")

	// History errors.
	ErrNoHistory = errors.New("no undo available")

	// Watcher errors.
	ErrStabilityTimeout = errors.New("file never stabilized")
	ErrWatcherStopped   = errors.New("watcher stopped")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// PartialUndoError reports an undo pass that reversed some files but not
// all. The ledger entry is removed regardless, so the failures cannot be
// retried; callers surface the counts instead.
type PartialUndoError struct {
	Undone int
	Failed int
}

func (e *PartialUndoError) Error() string {
	return fmt.Sprintf("undo completed with failures: %d undone, %d failed", e.Undone, e.Failed)
}
