package organizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/common"
	"github.com/filesift/filesift/internal/model"
)

func TestExecuteMove(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	target := filepath.Join(dir, "sorted", "a.txt")
	touch(t, source)
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))

	e := NewFileExecutor(filepath.Join(dir, "trash"))
	ok, status, err := e.Execute(context.Background(), source, target, model.OpMove)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "moved", status)
	assert.FileExists(t, target)
	assert.NoFileExists(t, source)
}

func TestExecuteCopyPreservesSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	target := filepath.Join(dir, "a_copy.txt")
	require.NoError(t, os.WriteFile(source, []byte("payload"), 0o600))

	e := NewFileExecutor(filepath.Join(dir, "trash"))
	ok, status, err := e.Execute(context.Background(), source, target, model.OpCopy)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "copied", status)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
	assert.FileExists(t, source)

	srcInfo, _ := os.Stat(source)
	dstInfo, _ := os.Stat(target)
	assert.Equal(t, srcInfo.Mode().Perm(), dstInfo.Mode().Perm())
	assert.True(t, srcInfo.ModTime().Equal(dstInfo.ModTime()))
}

func TestExecuteLink(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	target := filepath.Join(dir, "linked.txt")
	touch(t, source)

	e := NewFileExecutor(filepath.Join(dir, "trash"))
	ok, status, err := e.Execute(context.Background(), source, target, model.OpLink)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "linked", status)

	srcInfo, err := os.Stat(source)
	require.NoError(t, err)
	dstInfo, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, os.SameFile(srcInfo, dstInfo))
}

func TestExecuteMissingSource(t *testing.T) {
	dir := t.TempDir()
	e := NewFileExecutor(filepath.Join(dir, "trash"))

	ok, status, err := e.Execute(context.Background(),
		filepath.Join(dir, "ghost.txt"), filepath.Join(dir, "out.txt"), model.OpMove)
	assert.False(t, ok)
	assert.Equal(t, "source file not found", status)
	assert.ErrorIs(t, err, common.ErrSourceNotFound)
}

func TestExecuteCopyTargetExists(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	target := filepath.Join(dir, "b.txt")
	touch(t, source)
	touch(t, target)

	e := NewFileExecutor(filepath.Join(dir, "trash"))
	ok, status, err := e.Execute(context.Background(), source, target, model.OpCopy)
	assert.False(t, ok)
	assert.Equal(t, "target file already exists", status)
	assert.ErrorIs(t, err, common.ErrTargetExists)
}

func TestExecuteUnknownKind(t *testing.T) {
	e := NewFileExecutor(t.TempDir())
	ok, _, err := e.Execute(context.Background(), "a", "b", model.OperationKind("shred"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, common.ErrUnknownOperation)
}

func TestExecuteCancelledContext(t *testing.T) {
	e := NewFileExecutor(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, status, err := e.Execute(ctx, "a", "b", model.OpMove)
	assert.False(t, ok)
	assert.Equal(t, "canceled", status)
	assert.Error(t, err)
}

func TestTrashGroupsByBatch(t *testing.T) {
	dir := t.TempDir()
	trash := filepath.Join(dir, "trash")
	path := filepath.Join(dir, "doomed.txt")
	touch(t, path)

	e := NewFileExecutor(trash)
	require.NoError(t, e.Trash(path, "batch-1"))
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(trash, "batch-1", "doomed.txt"))
}

func TestRemoveLink(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	link := filepath.Join(dir, "link.txt")
	touch(t, source)
	require.NoError(t, os.Link(source, link))

	e := NewFileExecutor(filepath.Join(dir, "trash"))
	require.NoError(t, e.RemoveLink(link))
	assert.NoFileExists(t, link)
	assert.FileExists(t, source)
}
