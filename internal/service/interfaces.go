// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/filesift/filesift/internal/model"
)

// Ledger is the contract for the durable operation history. Implementations
// retain at most a fixed number of batches, evicting the oldest first.
type Ledger interface {
	// AppendBatch atomically adds a batch and evicts beyond capacity.
	AppendBatch(ctx context.Context, batch *model.OperationBatch) error
	// LastBatch returns the most recently appended batch without removing
	// it, or common.ErrNoHistory when the ledger is empty.
	LastBatch(ctx context.Context) (*model.OperationBatch, error)
	// PopLastBatch removes and returns the most recently appended batch.
	PopLastBatch(ctx context.Context) (*model.OperationBatch, error)
	// ListBatches returns up to limit batches, newest first.
	ListBatches(ctx context.Context, limit int) ([]model.OperationBatch, error)
	// LastClassifiedAt reports when files under the given source root were
	// last classified, or nil if never.
	LastClassifiedAt(ctx context.Context, sourceRoot string) (*time.Time, error)
	// Stats aggregates ledger contents for reporting.
	Stats(ctx context.Context) (*LedgerStats, error)
	// Clear removes every batch.
	Clear(ctx context.Context) error

	Migrate(ctx context.Context) error
	Close() error
}

// LedgerStats aggregates the ledger for the history command.
type LedgerStats struct {
	LastOperation   *time.Time
	FilesByKind     map[model.OperationKind]int
	TotalBatches    int
	TotalFiles      int
	TotalBytesMoved int64
}

// TargetResolver maps a file to the relative path segments of its target
// subdirectory. Implementations are side-effect-free apart from reading
// filesystem metadata.
type TargetResolver interface {
	TargetFor(ctx context.Context, path string) ([]string, error)
}

// ConflictResolver finalizes a desired target path. alreadyInPlace is true
// when the desired path refers to the same filesystem entity as the
// source, in which case no operation is needed.
type ConflictResolver interface {
	Finalize(source, desired string) (final string, alreadyInPlace bool, err error)
}

// Executor performs a single filesystem operation. It never propagates raw
// errors: the failure is folded into ok and the status message, with err
// carrying the typed cause for callers that need it.
type Executor interface {
	Execute(ctx context.Context, source, target string, kind model.OperationKind) (ok bool, status string, err error)
	// Trash sends a file to the recoverable trash instead of deleting it.
	Trash(path, batchID string) error
	// RemoveLink removes a hardlink created by a link operation.
	RemoveLink(path string) error
}

// Grouper clusters files under a root into association groups forming a
// partition of the scanned set.
type Grouper interface {
	Analyze(ctx context.Context, root string) (*model.GroupingReport, error)
}
