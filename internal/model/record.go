// Package model defines the core domain models used throughout the application.
package model

import "time"

// OperationKind identifies the filesystem action applied to a file.
type OperationKind string

// Operation kind constants.
const (
	OpMove OperationKind = "move"
	OpCopy OperationKind = "copy"
	OpLink OperationKind = "link"
)

// Valid reports whether the kind is one the executor understands.
func (k OperationKind) Valid() bool {
	switch k {
	case OpMove, OpCopy, OpLink:
		return true
	}
	return false
}

// FileRecord captures the outcome of processing a single file. It is
// immutable once created: failures carry an empty Target.
type FileRecord struct {
	Timestamp time.Time     `json:"timestamp"`
	Filename  string        `json:"filename"`
	Source    string        `json:"source"`
	Target    string        `json:"target"`
	Operation OperationKind `json:"operation"`
	Status    string        `json:"status"`
	GroupID   string        `json:"group,omitempty"`
	Size      int64         `json:"size"`
	Success   bool          `json:"success"`
}

// OperationBatch is one ledger entry: a set of file records produced by a
// single classify call (or a single monitored file).
type OperationBatch struct {
	Timestamp  time.Time     `json:"timestamp"`
	ID         string        `json:"id"`
	Operation  OperationKind `json:"operation"`
	SourceRoot string        `json:"source_path"`
	TargetRoot string        `json:"target_path"`
	Rules      []RuleName    `json:"rules"`
	Files      []FileRecord  `json:"files"`
}

// SuccessfulFiles returns only the records eligible for undo.
func (b *OperationBatch) SuccessfulFiles() []FileRecord {
	out := make([]FileRecord, 0, len(b.Files))
	for _, f := range b.Files {
		if f.Success {
			out = append(out, f)
		}
	}
	return out
}

// TotalSize sums the sizes of all successful records in the batch.
func (b *OperationBatch) TotalSize() int64 {
	var total int64
	for _, f := range b.Files {
		if f.Success {
			total += f.Size
		}
	}
	return total
}
