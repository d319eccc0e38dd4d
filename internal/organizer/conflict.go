// Package organizer performs the filesystem side of classification:
// finalizing target paths, executing operations and keeping a recoverable
// trash for undo.
package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxConflictProbes caps the numbered-suffix search before falling back to
// a timestamp suffix.
const maxConflictProbes = 1000

// Conflicts finalizes desired target paths against the existing tree. It
// never returns a path that refers to a different pre-existing file.
type Conflicts struct{}

// NewConflicts creates a conflict resolver.
func NewConflicts() Conflicts { return Conflicts{} }

// Finalize resolves the desired target path for a source file. When the
// desired path already refers to the same filesystem entity as the source,
// alreadyInPlace is true and no operation is needed; checking this first
// avoids self-renaming loops.
func (Conflicts) Finalize(source, desired string) (string, bool, error) {
	desiredInfo, err := os.Stat(desired)
	if err != nil {
		if os.IsNotExist(err) {
			return desired, false, nil
		}
		return "", false, fmt.Errorf("failed to stat target %s: %w", desired, err)
	}

	if sourceInfo, statErr := os.Stat(source); statErr == nil && os.SameFile(sourceInfo, desiredInfo) {
		return desired, true, nil
	}

	dir := filepath.Dir(desired)
	base := filepath.Base(desired)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 1; n <= maxConflictProbes; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, false, nil
		}
	}

	// Pathological collision run; a timestamp suffix is the last resort.
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, stamp, ext)), false, nil
}
