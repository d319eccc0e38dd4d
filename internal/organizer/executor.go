package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/filesift/filesift/internal/common"
	"github.com/filesift/filesift/internal/model"
)

// FileExecutor performs move, copy and hardlink operations. Every failure
// is converted into a (false, status, typed error) triple at this boundary;
// raw errors never escape to the pipeline.
type FileExecutor struct {
	trashDir string
}

// NewFileExecutor creates an executor whose copy-undo trash lives under
// trashDir.
func NewFileExecutor(trashDir string) *FileExecutor {
	return &FileExecutor{trashDir: trashDir}
}

// Execute runs one operation. The status string is safe to surface to the
// user verbatim.
func (e *FileExecutor) Execute(ctx context.Context, source, target string, kind model.OperationKind) (bool, string, error) {
	if err := ctx.Err(); err != nil {
		return false, "canceled", err
	}

	var err error
	switch kind {
	case model.OpMove:
		err = moveFile(source, target)
	case model.OpCopy:
		err = copyFile(source, target)
	case model.OpLink:
		err = os.Link(source, target)
	default:
		return false, fmt.Sprintf("unknown operation kind: %s", kind), common.ErrUnknownOperation
	}

	if err == nil {
		switch kind {
		case model.OpMove:
			return true, "moved", nil
		case model.OpCopy:
			return true, "copied", nil
		default:
			return true, "linked", nil
		}
	}

	typed := classifyFSError(err)
	return false, failureStatus(typed, err), typed
}

// Trash moves a file into the recoverable trash, grouped by batch so a
// trashed batch can be inspected or restored by hand.
func (e *FileExecutor) Trash(path, batchID string) error {
	dest := filepath.Join(e.trashDir, batchID, filepath.Base(path))
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("failed to create trash directory: %w", err)
	}
	// Trash entries never overwrite each other.
	if _, err := os.Lstat(dest); err == nil {
		dest = filepath.Join(e.trashDir, batchID, fmt.Sprintf("%d_%s", os.Getpid(), filepath.Base(path)))
	}
	if err := moveFile(path, dest); err != nil {
		return fmt.Errorf("failed to trash %s: %w", path, err)
	}
	return nil
}

// RemoveLink removes a hardlink created by a link operation.
func (e *FileExecutor) RemoveLink(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove link %s: %w", path, err)
	}
	return nil
}

// moveFile renames, falling back to copy+remove when source and target sit
// on different devices.
func moveFile(source, target string) error {
	err := os.Rename(source, target)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}
	if copyErr := copyFile(source, target); copyErr != nil {
		return copyErr
	}
	return os.Remove(source)
}

// copyFile copies contents and preserves mode and modification time.
func copyFile(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(target, info.ModTime(), info.ModTime())
}

// classifyFSError folds an OS error into the application taxonomy.
func classifyFSError(err error) error {
	switch {
	case os.IsPermission(err):
		return fmt.Errorf("%w: %v", common.ErrPermissionDenied, err)
	case os.IsExist(err):
		return fmt.Errorf("%w: %v", common.ErrTargetExists, err)
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %v", common.ErrSourceNotFound, err)
	default:
		return fmt.Errorf("filesystem error: %w", err)
	}
}

func failureStatus(typed, raw error) string {
	switch {
	case errors.Is(typed, common.ErrPermissionDenied):
		return "permission denied"
	case errors.Is(typed, common.ErrTargetExists):
		return "target file already exists"
	case errors.Is(typed, common.ErrSourceNotFound):
		return "source file not found"
	default:
		return fmt.Sprintf("operation failed: %v", raw)
	}
}
