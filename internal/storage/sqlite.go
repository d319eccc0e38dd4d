// Package storage implements the operation-history ledger on SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/filesift/filesift/internal/common"
	"github.com/filesift/filesift/internal/model"
	"github.com/filesift/filesift/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultCapacity is the number of batches retained before the oldest is
// evicted.
const DefaultCapacity = 50

// SQLiteLedger implements service.Ledger using SQLite.
type SQLiteLedger struct {
	db       *sql.DB
	dbPath   string
	capacity int
}

// NewSQLiteLedger opens (creating if needed) the ledger database at dbPath.
// Pass ":memory:" for an ephemeral ledger in tests.
func NewSQLiteLedger(dbPath string, capacity int) (*SQLiteLedger, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: ledger path must not be empty", common.ErrInvalidConfig)
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping ledger database: %w", err)
	}

	return &SQLiteLedger{db: db, dbPath: dbPath, capacity: capacity}, nil
}

// Close closes the database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// AppendBatch stores a batch and evicts the oldest entries beyond capacity
// in the same transaction.
func (l *SQLiteLedger) AppendBatch(ctx context.Context, batch *model.OperationBatch) error {
	rulesJSON, err := json.Marshal(batch.Rules)
	if err != nil {
		return fmt.Errorf("failed to encode rule set: %w", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, timestamp, operation, source_path, target_path, rules)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.Timestamp, string(batch.Operation),
		batch.SourceRoot, batch.TargetRoot, string(rulesJSON)); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	for i, f := range batch.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO file_records (batch_id, seq, filename, source, target, operation, status, success, size, group_id, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batch.ID, i, f.Filename, f.Source, f.Target, string(f.Operation),
			f.Status, f.Success, f.Size, f.GroupID, f.Timestamp); err != nil {
			return fmt.Errorf("failed to insert file record: %w", err)
		}
	}

	// Capacity bound: the oldest batches go first.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM batches WHERE id IN (
			SELECT id FROM batches ORDER BY timestamp DESC, rowid DESC LIMIT -1 OFFSET ?
		 )`, l.capacity); err != nil {
		return fmt.Errorf("failed to evict old batches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// LastBatch returns the newest batch without removing it.
func (l *SQLiteLedger) LastBatch(ctx context.Context) (*model.OperationBatch, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, timestamp, operation, source_path, target_path, rules
		 FROM batches ORDER BY timestamp DESC, rowid DESC LIMIT 1`)
	return l.scanBatch(ctx, row)
}

// PopLastBatch removes and returns the newest batch.
func (l *SQLiteLedger) PopLastBatch(ctx context.Context) (*model.OperationBatch, error) {
	batch, err := l.LastBatch(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := l.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, batch.ID); err != nil {
		return nil, fmt.Errorf("failed to pop batch: %w", err)
	}
	return batch, nil
}

// ListBatches returns up to limit batches, newest first. limit <= 0 means
// no limit.
func (l *SQLiteLedger) ListBatches(ctx context.Context, limit int) ([]model.OperationBatch, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, timestamp, operation, source_path, target_path, rules
		 FROM batches ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []model.OperationBatch
	for rows.Next() {
		b, scanErr := scanBatchRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batches: %w", err)
	}

	for i := range batches {
		files, loadErr := l.loadFiles(ctx, batches[i].ID)
		if loadErr != nil {
			return nil, loadErr
		}
		batches[i].Files = files
	}
	return batches, nil
}

// LastClassifiedAt reports when the given source root last appeared in a
// batch, or nil if never.
func (l *SQLiteLedger) LastClassifiedAt(ctx context.Context, sourceRoot string) (*time.Time, error) {
	// Aggregates like MAX(timestamp) come back from go-sqlite3 as strings;
	// ordering on the typed column keeps the time.Time conversion.
	var ts time.Time
	err := l.db.QueryRowContext(ctx,
		`SELECT timestamp FROM batches WHERE source_path = ?
		 ORDER BY timestamp DESC, rowid DESC LIMIT 1`, sourceRoot).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last classification: %w", err)
	}
	return &ts, nil
}

// Stats aggregates the ledger for reporting.
func (l *SQLiteLedger) Stats(ctx context.Context) (*service.LedgerStats, error) {
	stats := &service.LedgerStats{FilesByKind: make(map[model.OperationKind]int)}

	if err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM batches`).Scan(&stats.TotalBatches); err != nil {
		return nil, fmt.Errorf("failed to count batches: %w", err)
	}

	var last time.Time
	err := l.db.QueryRowContext(ctx,
		`SELECT timestamp FROM batches
		 ORDER BY timestamp DESC, rowid DESC LIMIT 1`).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to query last operation: %w", err)
	default:
		stats.LastOperation = &last
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT operation, COUNT(*), COALESCE(SUM(size), 0)
		 FROM file_records WHERE success = 1 GROUP BY operation`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate file records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			kind  string
			count int
			size  int64
		)
		if err := rows.Scan(&kind, &count, &size); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		stats.FilesByKind[model.OperationKind(kind)] = count
		stats.TotalFiles += count
		stats.TotalBytesMoved += size
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aggregates: %w", err)
	}
	return stats, nil
}

// Clear removes every batch and its records.
func (l *SQLiteLedger) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM batches`); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (l *SQLiteLedger) scanBatch(ctx context.Context, row *sql.Row) (*model.OperationBatch, error) {
	b, err := scanBatchRow(row)
	if err != nil {
		return nil, err
	}
	files, err := l.loadFiles(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Files = files
	return b, nil
}

func scanBatchRow(row rowScanner) (*model.OperationBatch, error) {
	var (
		b         model.OperationBatch
		operation string
		rulesJSON string
	)
	err := row.Scan(&b.ID, &b.Timestamp, &operation, &b.SourceRoot, &b.TargetRoot, &rulesJSON)
	if err == sql.ErrNoRows {
		return nil, common.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan batch: %w", err)
	}
	b.Operation = model.OperationKind(operation)
	if err := json.Unmarshal([]byte(rulesJSON), &b.Rules); err != nil {
		return nil, fmt.Errorf("failed to decode rule set: %w", err)
	}
	return &b, nil
}

func (l *SQLiteLedger) loadFiles(ctx context.Context, batchID string) ([]model.FileRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT filename, source, target, operation, status, success, size, group_id, timestamp
		 FROM file_records WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []model.FileRecord
	for rows.Next() {
		var (
			f         model.FileRecord
			operation string
		)
		if err := rows.Scan(&f.Filename, &f.Source, &f.Target, &operation,
			&f.Status, &f.Success, &f.Size, &f.GroupID, &f.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		f.Operation = model.OperationKind(operation)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file records: %w", err)
	}
	return files, nil
}
