// Package engine orchestrates classification runs: it enumerates files,
// resolves their targets, finalizes conflicts, executes the filesystem
// operations and records the outcome in the ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/filesift/filesift/internal/common"
	"github.com/filesift/filesift/internal/grouping"
	"github.com/filesift/filesift/internal/model"
	"github.com/filesift/filesift/internal/service"
)

// Config assembles the collaborators for an Engine. Resolver, Conflicts,
// Executor and Ledger are required; Grouper is only needed for grouped
// classification.
type Config struct {
	Resolver  service.TargetResolver
	Conflicts service.ConflictResolver
	Executor  service.Executor
	Ledger    service.Ledger
	Grouper   service.Grouper

	// Rules are recorded on each batch for history display.
	Rules model.RuleSet
	// SkipMarker excludes marked directories from enumeration.
	SkipMarker string
	// Progress, when set, is called after each processed file.
	Progress func(done, total int)

	Logger *slog.Logger
}

// Engine coordinates a full classification pipeline.
type Engine struct {
	resolver  service.TargetResolver
	conflicts service.ConflictResolver
	executor  service.Executor
	ledger    service.Ledger
	grouper   service.Grouper

	rules      model.RuleSet
	skipMarker string
	progress   func(done, total int)
	logger     *slog.Logger
}

// New creates an engine from its collaborators.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		resolver:   cfg.Resolver,
		conflicts:  cfg.Conflicts,
		executor:   cfg.Executor,
		ledger:     cfg.Ledger,
		grouper:    cfg.Grouper,
		rules:      cfg.Rules,
		skipMarker: cfg.SkipMarker,
		progress:   cfg.Progress,
		logger:     logger,
	}
}

// Classify processes every file under sourceRoot and records the run as a
// single ledger batch. Individual file failures are recorded and skipped;
// only enumeration or ledger errors fail the whole run.
func (e *Engine) Classify(ctx context.Context, sourceRoot, targetRoot string, kind model.OperationKind) (*model.OperationBatch, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownOperation, kind)
	}
	files, err := grouping.CollectFiles(sourceRoot, e.skipMarker)
	if err != nil {
		return nil, err
	}
	e.adaptDepth(len(files))

	batch := e.newBatch(sourceRoot, targetRoot, kind)
	for i, source := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch.Files = append(batch.Files, e.classifyOne(ctx, source, targetRoot, kind, ""))
		if e.progress != nil {
			e.progress(i+1, len(files))
		}
	}

	if err := e.appendBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ClassifyGrouped is Classify with association analysis: files that belong
// together land in the same target folder, with project and program groups
// getting a dedicated subfolder.
func (e *Engine) ClassifyGrouped(ctx context.Context, sourceRoot, targetRoot string, kind model.OperationKind) (*model.OperationBatch, error) {
	if e.grouper == nil {
		return nil, errors.New("grouped classification requires a grouper")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownOperation, kind)
	}
	report, err := e.grouper.Analyze(ctx, sourceRoot)
	if err != nil {
		return nil, err
	}
	e.adaptDepth(report.TotalFiles)

	batch := e.newBatch(sourceRoot, targetRoot, kind)
	done := 0
	for _, group := range report.Groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, groupErr := e.classifyGroup(ctx, group, targetRoot, kind)
		if groupErr != nil {
			e.logger.Warn("skipping group", "kind", group.Kind, "main", group.MainFile, "error", groupErr)
		}
		batch.Files = append(batch.Files, records...)
		done += len(group.Members)
		if e.progress != nil {
			e.progress(done, report.TotalFiles)
		}
	}

	if err := e.appendBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// classifyGroup routes every member of a group. Non-individual groups share
// the target directory decided by the group's main file.
func (e *Engine) classifyGroup(ctx context.Context, group model.AssociationGroup, targetRoot string, kind model.OperationKind) ([]model.FileRecord, error) {
	if group.Kind == model.GroupIndividual {
		records := make([]model.FileRecord, 0, len(group.Members))
		for _, member := range group.Members {
			records = append(records, e.classifyOne(ctx, member, targetRoot, kind, ""))
		}
		return records, nil
	}

	dir, err := e.targetDirFor(ctx, group.MainFile, targetRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group target: %w", err)
	}
	switch group.Kind {
	case model.GroupProject:
		dir = filepath.Join(dir, "project_"+filepath.Base(filepath.Dir(group.MainFile)))
	case model.GroupProgram:
		dir = filepath.Join(dir, "program_"+stem(group.MainFile))
	}

	records := make([]model.FileRecord, 0, len(group.Members))
	for _, member := range group.Members {
		records = append(records, e.executeInto(ctx, member, dir, kind, group.ID))
	}
	return records, nil
}

// Preview resolves targets without touching the filesystem. Records mark
// whether the operation would hit a name conflict at the current target.
func (e *Engine) Preview(ctx context.Context, sourceRoot, targetRoot string, kind model.OperationKind) ([]model.FileRecord, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownOperation, kind)
	}
	files, err := grouping.CollectFiles(sourceRoot, e.skipMarker)
	if err != nil {
		return nil, err
	}
	e.adaptDepth(len(files))

	records := make([]model.FileRecord, 0, len(files))
	for _, source := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := model.FileRecord{
			Timestamp: time.Now(),
			Filename:  filepath.Base(source),
			Source:    source,
			Operation: kind,
			Size:      fileSize(source),
			Success:   true,
		}
		dir, resolveErr := e.targetDirFor(ctx, source, targetRoot)
		if resolveErr != nil {
			record.Success = false
			record.Status = "failed to resolve target"
			records = append(records, record)
			continue
		}
		desired := filepath.Join(dir, filepath.Base(source))
		record.Target = desired
		record.Status = fmt.Sprintf("would %s", kind)
		if info, statErr := os.Lstat(desired); statErr == nil {
			if src, srcErr := os.Stat(source); srcErr == nil && os.SameFile(info, src) {
				record.Status = "already in place"
			} else {
				record.Status = "target exists, would rename"
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// ClassifySingle processes one file and records it as its own batch. Used
// by the watcher, where every stabilized file is an independent operation.
func (e *Engine) ClassifySingle(ctx context.Context, path, targetRoot string, kind model.OperationKind) (*model.OperationBatch, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownOperation, kind)
	}
	batch := e.newBatch(filepath.Dir(path), targetRoot, kind)
	batch.Files = append(batch.Files, e.classifyOne(ctx, path, targetRoot, kind, ""))
	if err := e.appendBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Undo reverses the most recent batch in the ledger. The batch is removed
// even when some files cannot be restored; those failures are reported
// through PartialUndoError.
func (e *Engine) Undo(ctx context.Context) (bool, string, error) {
	batch, err := e.ledger.PopLastBatch(ctx)
	if errors.Is(err, common.ErrNoHistory) {
		return false, "no undo available", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("failed to read history: %w", err)
	}

	successes := batch.SuccessfulFiles()
	undone, failed := 0, 0
	for i := len(successes) - 1; i >= 0; i-- {
		record := successes[i]
		if record.Target == "" || record.Target == record.Source {
			continue
		}
		if err := e.undoRecord(ctx, record, batch.ID); err != nil {
			e.logger.Warn("failed to undo file", "file", record.Filename, "error", err)
			failed++
			continue
		}
		undone++
	}

	message := fmt.Sprintf("restored %d files from %s", undone, batch.Timestamp.Format("2006-01-02 15:04:05"))
	if failed > 0 {
		return true, message, &common.PartialUndoError{Undone: undone, Failed: failed}
	}
	return true, message, nil
}

func (e *Engine) undoRecord(ctx context.Context, record model.FileRecord, batchID string) error {
	switch record.Operation {
	case model.OpMove:
		if err := os.MkdirAll(filepath.Dir(record.Source), 0o755); err != nil {
			return fmt.Errorf("failed to recreate source directory: %w", err)
		}
		ok, status, err := e.executor.Execute(ctx, record.Target, record.Source, model.OpMove)
		if !ok {
			if err != nil {
				return err
			}
			return errors.New(status)
		}
		return nil
	case model.OpCopy:
		return e.executor.Trash(record.Target, batchID)
	case model.OpLink:
		return e.executor.RemoveLink(record.Target)
	}
	return fmt.Errorf("%w: %s", common.ErrUnknownOperation, record.Operation)
}

// classifyOne resolves and executes a single file, never failing the run.
func (e *Engine) classifyOne(ctx context.Context, source, targetRoot string, kind model.OperationKind, groupID string) model.FileRecord {
	dir, err := e.targetDirFor(ctx, source, targetRoot)
	if err != nil {
		e.logger.Warn("failed to resolve target", "file", source, "error", err)
		return failedRecord(source, kind, groupID, "failed to resolve target")
	}
	return e.executeInto(ctx, source, dir, kind, groupID)
}

// executeInto finalizes the conflict for source inside dir and runs the
// operation, producing the ledger record either way.
func (e *Engine) executeInto(ctx context.Context, source, dir string, kind model.OperationKind, groupID string) model.FileRecord {
	record := model.FileRecord{
		Timestamp: time.Now(),
		Filename:  filepath.Base(source),
		Source:    source,
		Operation: kind,
		GroupID:   groupID,
		Size:      fileSize(source),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.logger.Warn("failed to create target directory", "dir", dir, "error", err)
		record.Status = "failed to create target directory"
		return record
	}

	desired := filepath.Join(dir, filepath.Base(source))
	final, inPlace, err := e.conflicts.Finalize(source, desired)
	if err != nil {
		e.logger.Warn("failed to finalize target", "file", source, "error", err)
		record.Status = "failed to finalize target"
		return record
	}
	if inPlace {
		record.Target = final
		record.Status = "already in place"
		record.Success = true
		return record
	}

	ok, status, err := e.executor.Execute(ctx, source, final, kind)
	record.Status = status
	record.Success = ok
	if ok {
		record.Target = final
	} else {
		e.logger.Warn("operation failed", "file", source, "status", status, "error", err)
	}
	return record
}

// adaptDepth lets depth-aware resolvers pick a hierarchy depth for the
// size of this run.
func (e *Engine) adaptDepth(fileCount int) {
	if adv, ok := e.resolver.(interface{ AdaptDepth(int) }); ok {
		adv.AdaptDepth(fileCount)
	}
}

func (e *Engine) targetDirFor(ctx context.Context, source, targetRoot string) (string, error) {
	segments, err := e.resolver.TargetFor(ctx, source)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{targetRoot}, segments...)...), nil
}

func (e *Engine) newBatch(sourceRoot, targetRoot string, kind model.OperationKind) *model.OperationBatch {
	return &model.OperationBatch{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Operation:  kind,
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Rules:      append([]model.RuleName(nil), e.rules...),
	}
}

// appendBatch persists a non-empty batch. Empty runs leave no ledger entry.
func (e *Engine) appendBatch(ctx context.Context, batch *model.OperationBatch) error {
	if len(batch.Files) == 0 {
		return nil
	}
	if err := e.ledger.AppendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

func failedRecord(source string, kind model.OperationKind, groupID, status string) model.FileRecord {
	return model.FileRecord{
		Timestamp: time.Now(),
		Filename:  filepath.Base(source),
		Source:    source,
		Operation: kind,
		GroupID:   groupID,
		Status:    status,
		Size:      fileSize(source),
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
