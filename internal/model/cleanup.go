package model

import "time"

// DuplicateSet groups files sharing a content fingerprint. Canonical is the
// most recently modified member; the rest are candidates for removal.
type DuplicateSet struct {
	Fingerprint string        `json:"fingerprint"`
	Canonical   FlaggedFile   `json:"canonical"`
	Duplicates  []FlaggedFile `json:"duplicates"`
}

// ReclaimableSize is the total size of the non-canonical members.
func (d *DuplicateSet) ReclaimableSize() int64 {
	var total int64
	for _, f := range d.Duplicates {
		total += f.Size
	}
	return total
}

// FlaggedFile is a file surfaced by the cleanup analyzer together with the
// reason it was flagged.
type FlaggedFile struct {
	Modified time.Time `json:"modified"`
	Path     string    `json:"path"`
	Reason   string    `json:"reason"`
	Size     int64     `json:"size"`
}

// CleanupReport is the advisory output of a cleanup scan. It never mutates
// the filesystem.
type CleanupReport struct {
	GeneratedAt time.Time      `json:"timestamp"`
	Root        string         `json:"root"`
	Duplicates  []DuplicateSet `json:"duplicates"`
	TempFiles   []FlaggedFile  `json:"temp_files"`
	LargeFiles  []FlaggedFile  `json:"large_files"`
	OldFiles    []FlaggedFile  `json:"old_files"`
	EmptyFiles  []FlaggedFile  `json:"empty_files"`
	Reminders   []Reminder     `json:"reminders"`
}

// PotentialSavings returns the bytes freed if every duplicate, temp file
// and empty file were removed.
func (r *CleanupReport) PotentialSavings() int64 {
	var total int64
	for i := range r.Duplicates {
		total += r.Duplicates[i].ReclaimableSize()
	}
	for _, f := range r.TempFiles {
		total += f.Size
	}
	return total
}

// ReminderPriority orders organization reminders.
type ReminderPriority int

// Reminder priorities, highest first.
const (
	PriorityLow ReminderPriority = iota + 1
	PriorityMedium
	PriorityHigh
)

func (p ReminderPriority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// Reminder is a directory-health observation nudging the user to organize.
type Reminder struct {
	Kind       string           `json:"kind"`
	Message    string           `json:"message"`
	Suggestion string           `json:"suggestion"`
	Priority   ReminderPriority `json:"priority"`
}
