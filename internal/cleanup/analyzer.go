package cleanup

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/filesift/filesift/internal/model"
	"github.com/filesift/filesift/internal/service"
)

var (
	tempExtensions = map[string]bool{
		".tmp": true, ".temp": true, ".bak": true, ".backup": true,
		".old": true, ".orig": true, ".cache": true,
	}
	tempPrefixes = []string{"~", ".~", "temp_", "tmp_", "backup_"}
	tempFolders  = map[string]bool{
		"temp": true, "tmp": true, "cache": true, "backup": true,
		"trash": true, "$recycle.bin": true, ".trash": true,
	}
)

// Config tunes the cleanup analysis thresholds.
type Config struct {
	// OldAge flags files not modified for at least this long.
	OldAge time.Duration
	// LargeThreshold flags files at or above this size.
	LargeThreshold int64
	// TopLargeCount caps the large-file list, biggest first.
	TopLargeCount int
	// SkipMarker excludes marked directories from the scan.
	SkipMarker string
}

// DefaultConfig returns the standard analysis thresholds.
func DefaultConfig() Config {
	return Config{
		OldAge:         2 * 365 * 24 * time.Hour,
		LargeThreshold: 100 * 1024 * 1024,
		TopLargeCount:  20,
		SkipMarker:     ".noclassify",
	}
}

// Analyzer scans directory trees for reclaimable space and health issues.
type Analyzer struct {
	cfg    Config
	ledger service.Ledger
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. The ledger may be nil; it only feeds
// the staleness reminder.
func NewAnalyzer(cfg Config, ledger service.Ledger, logger *slog.Logger) *Analyzer {
	if cfg.TopLargeCount <= 0 {
		cfg.TopLargeCount = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, ledger: ledger, logger: logger}
}

type scannedFile struct {
	path    string
	size    int64
	modTime time.Time
	depth   int
}

// Analyze walks root and builds a full cleanup report. Unreadable files
// are skipped with a debug log rather than failing the scan.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*model.CleanupReport, error) {
	files, err := a.scan(ctx, root)
	if err != nil {
		return nil, err
	}

	report := &model.CleanupReport{
		GeneratedAt: time.Now(),
		Root:        root,
	}

	report.Duplicates = a.findDuplicates(ctx, files)
	for _, f := range files {
		rel, relErr := filepath.Rel(root, f.path)
		if relErr != nil {
			rel = f.path
		}
		if reason, ok := tempReason(rel); ok {
			report.TempFiles = append(report.TempFiles, flagged(f, reason))
		}
		if f.size == 0 {
			report.EmptyFiles = append(report.EmptyFiles, flagged(f, "empty file"))
		}
		if a.cfg.OldAge > 0 && time.Since(f.modTime) >= a.cfg.OldAge {
			report.OldFiles = append(report.OldFiles, flagged(f, fmt.Sprintf("not modified since %s", f.modTime.Format("2006-01-02"))))
		}
	}
	report.LargeFiles = a.findLarge(files)
	report.Reminders = a.buildReminders(ctx, root, files, a.ledger)

	return report, nil
}

func (a *Analyzer) scan(ctx context.Context, root string) ([]scannedFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))
	var files []scannedFile
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if a.cfg.SkipMarker != "" {
				if _, markerErr := os.Stat(filepath.Join(path, a.cfg.SkipMarker)); markerErr == nil {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, statErr := d.Info()
		if statErr != nil {
			a.logger.Debug("skipping unreadable file", "path", path, "error", statErr)
			return nil
		}
		files = append(files, scannedFile{
			path:    path,
			size:    fi.Size(),
			modTime: fi.ModTime(),
			depth:   strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, walkErr)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

// findDuplicates fingerprints candidate files and groups identical keys.
// The newest copy of each set is treated as canonical.
func (a *Analyzer) findDuplicates(ctx context.Context, files []scannedFile) []model.DuplicateSet {
	bySize := make(map[int64][]scannedFile)
	for _, f := range files {
		if f.size >= minFingerprintSize {
			bySize[f.size] = append(bySize[f.size], f)
		}
	}

	byKey := make(map[string][]scannedFile)
	var keys []string
	for _, candidates := range bySize {
		if len(candidates) < 2 {
			continue
		}
		for _, f := range candidates {
			if ctx.Err() != nil {
				return nil
			}
			key, err := Fingerprint(f.path, f.size)
			if err != nil {
				a.logger.Debug("skipping unhashable file", "path", f.path, "error", err)
				continue
			}
			if len(byKey[key]) == 1 {
				keys = append(keys, key)
			}
			byKey[key] = append(byKey[key], f)
		}
	}
	sort.Strings(keys)

	var sets []model.DuplicateSet
	for _, key := range keys {
		group := byKey[key]
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].modTime.After(group[j].modTime) })
		set := model.DuplicateSet{
			Fingerprint: key,
			Canonical:   flagged(group[0], "newest copy"),
		}
		for _, dup := range group[1:] {
			set.Duplicates = append(set.Duplicates, flagged(dup, "duplicate content"))
		}
		sets = append(sets, set)
	}
	return sets
}

func (a *Analyzer) findLarge(files []scannedFile) []model.FlaggedFile {
	var large []scannedFile
	for _, f := range files {
		if f.size >= a.cfg.LargeThreshold {
			large = append(large, f)
		}
	}
	sort.Slice(large, func(i, j int) bool { return large[i].size > large[j].size })
	if len(large) > a.cfg.TopLargeCount {
		large = large[:a.cfg.TopLargeCount]
	}
	out := make([]model.FlaggedFile, 0, len(large))
	for _, f := range large {
		out = append(out, flagged(f, "unusually large"))
	}
	return out
}

// tempReason reports whether a path relative to the scan root looks like
// a temporary leftover, and why.
func tempReason(rel string) (string, bool) {
	base := strings.ToLower(filepath.Base(rel))
	if ext := filepath.Ext(base); tempExtensions[ext] {
		return fmt.Sprintf("temporary extension %s", ext), true
	}
	for _, prefix := range tempPrefixes {
		if strings.HasPrefix(base, prefix) {
			return fmt.Sprintf("temporary name prefix %q", prefix), true
		}
	}
	dir := filepath.Dir(rel)
	for dir != "." && dir != string(filepath.Separator) {
		if tempFolders[strings.ToLower(filepath.Base(dir))] {
			return fmt.Sprintf("inside %s folder", filepath.Base(dir)), true
		}
		dir = filepath.Dir(dir)
	}
	return "", false
}

func flagged(f scannedFile, reason string) model.FlaggedFile {
	return model.FlaggedFile{
		Path:     f.path,
		Size:     f.size,
		Modified: f.modTime,
		Reason:   reason,
	}
}
