package cleanup

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/filesift/filesift/internal/model"
	"github.com/filesift/filesift/internal/service"
)

const (
	maxLooseFiles     = 50
	maxExtensionTypes = 10
	maxNestingDepth   = 6
	maxMessyNames     = 5
	staleLedgerAge    = 30 * 24 * time.Hour
)

// messyNamePattern matches ad-hoc duplicate suffixes like "report (2).pdf".
var messyNamePattern = regexp.MustCompile(`\(\d+\)`)

// buildReminders derives directory-health nudges from a completed scan.
// The ledger, when present, contributes a staleness reminder based on the
// last recorded classification of this root.
func (a *Analyzer) buildReminders(ctx context.Context, root string, files []scannedFile, ledger service.Ledger) []model.Reminder {
	var reminders []model.Reminder

	if len(files) > maxLooseFiles {
		reminders = append(reminders, model.Reminder{
			Kind:       "file_count",
			Message:    fmt.Sprintf("%d files in %s", len(files), root),
			Suggestion: "run a classification to sort them into folders",
			Priority:   model.PriorityHigh,
		})
	}

	exts := make(map[string]bool)
	maxDepth := 0
	messy := 0
	for _, f := range files {
		if ext := strings.ToLower(filepath.Ext(f.path)); ext != "" {
			exts[ext] = true
		}
		if f.depth > maxDepth {
			maxDepth = f.depth
		}
		base := strings.ToLower(filepath.Base(f.path))
		if strings.Contains(base, "copy") || strings.Contains(base, "backup") || messyNamePattern.MatchString(base) {
			messy++
		}
	}

	if len(exts) > maxExtensionTypes {
		reminders = append(reminders, model.Reminder{
			Kind:       "extension_variety",
			Message:    fmt.Sprintf("%d different file types mixed together", len(exts)),
			Suggestion: "classify by type to separate them",
			Priority:   model.PriorityMedium,
		})
	}
	if maxDepth > maxNestingDepth {
		reminders = append(reminders, model.Reminder{
			Kind:       "deep_nesting",
			Message:    fmt.Sprintf("folders nested %d levels deep", maxDepth),
			Suggestion: "flatten rarely used subfolders",
			Priority:   model.PriorityMedium,
		})
	}
	if messy > maxMessyNames {
		reminders = append(reminders, model.Reminder{
			Kind:       "messy_names",
			Message:    fmt.Sprintf("%d files look like ad-hoc copies or backups", messy),
			Suggestion: "review duplicates and delete stale copies",
			Priority:   model.PriorityLow,
		})
	}

	if ledger != nil && ctx.Err() == nil {
		last, err := ledger.LastClassifiedAt(ctx, root)
		if err != nil {
			a.logger.Debug("failed to read last classification time", "root", root, "error", err)
		} else if last == nil || time.Since(*last) > staleLedgerAge {
			msg := "this folder has never been classified"
			if last != nil {
				msg = fmt.Sprintf("last classified on %s", last.Format("2006-01-02"))
			}
			reminders = append(reminders, model.Reminder{
				Kind:       "stale_classification",
				Message:    msg,
				Suggestion: "run a fresh classification pass",
				Priority:   model.PriorityLow,
			})
		}
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].Priority > reminders[j].Priority
	})
	return reminders
}
