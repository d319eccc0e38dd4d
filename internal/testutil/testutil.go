// Package testutil provides shared fixtures for tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/storage"
)

// SetupTestLedger creates an in-memory ledger with the schema applied.
// The ledger is closed automatically when the test finishes.
func SetupTestLedger(t *testing.T) *storage.SQLiteLedger {
	t.Helper()

	ledger, err := storage.NewSQLiteLedger(":memory:", storage.DefaultCapacity)
	require.NoError(t, err, "failed to create test ledger")
	require.NoError(t, ledger.Migrate(context.Background()), "failed to migrate test ledger")

	t.Cleanup(func() {
		_ = ledger.Close()
	})
	return ledger
}

// WriteTree creates the named files under root with placeholder content,
// creating intermediate directories as needed. Paths use slashes.
func WriteTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	}
}
