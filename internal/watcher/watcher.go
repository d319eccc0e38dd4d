// Package watcher monitors a directory and classifies new files once they
// stop changing. Events are debounced into batches and processed by a
// bounded worker pool.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/filesift/filesift/internal/common"
	"github.com/filesift/filesift/internal/model"
)

// Classifier processes one stabilized file as its own history batch.
type Classifier interface {
	ClassifySingle(ctx context.Context, path, targetRoot string, kind model.OperationKind) (*model.OperationBatch, error)
}

// Options configures a Monitor. Zero durations and counts fall back to
// the defaults below.
type Options struct {
	Source    string
	Target    string
	Operation model.OperationKind

	// ExcludePatterns are glob patterns matched against base names.
	ExcludePatterns []string
	MinFileSize     int64
	MaxFileSize     int64

	// DebounceDelay is how long a pending batch waits for more events
	// before it is flushed.
	DebounceDelay time.Duration
	// BatchSize flushes a pending batch early once it reaches this many
	// files.
	BatchSize int
	// Workers bounds the number of files processed concurrently.
	Workers int

	// StabilityInterval is the polling period while waiting for a file to
	// stop changing; StabilityPolls identical polls in a row mean stable.
	StabilityInterval time.Duration
	StabilityPolls    int
	StabilityTimeout  time.Duration

	// Results, when set, receives the record of every processed file,
	// including a synthesized failure record when a file never produced
	// one. Called from worker goroutines without the monitor lock held.
	Results func(model.FileRecord)

	Logger *slog.Logger
}

func (o *Options) applyDefaults() {
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.StabilityInterval <= 0 {
		o.StabilityInterval = 200 * time.Millisecond
	}
	if o.StabilityPolls <= 0 {
		o.StabilityPolls = 3
	}
	if o.StabilityTimeout <= 0 {
		o.StabilityTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// MonitorStats is a point-in-time snapshot of a running monitor.
type MonitorStats struct {
	StartedAt  time.Time
	Uptime     time.Duration
	Processed  int
	Failed     int
	ByKind     map[model.OperationKind]int
	BytesMoved int64
}

// Monitor watches a source directory and routes stabilized files through
// the classifier. All pending, in-flight and processed bookkeeping lives
// under a single mutex.
type Monitor struct {
	opts       Options
	classifier Classifier

	mu         sync.Mutex
	pending    []string
	pendingSet map[string]bool
	inFlight   map[string]bool
	processed  map[string]bool
	timer      *time.Timer
	stats      MonitorStats

	workCh chan string
	cancel context.CancelFunc
	wg     sync.WaitGroup
	fsw    *fsnotify.Watcher
}

// New creates a monitor for the given classifier.
func New(classifier Classifier, opts Options) (*Monitor, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier is required", common.ErrInvalidConfig)
	}
	if !opts.Operation.Valid() {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownOperation, opts.Operation)
	}
	opts.applyDefaults()
	return &Monitor{
		opts:       opts,
		classifier: classifier,
		pendingSet: make(map[string]bool),
		inFlight:   make(map[string]bool),
		processed:  make(map[string]bool),
		workCh:     make(chan string, 1024),
	}, nil
}

// Start begins watching. It returns once the event loop and workers are
// running; call Stop to shut down.
func (m *Monitor) Start(ctx context.Context) error {
	info, err := os.Stat(m.opts.Source)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: watch source %s is not a directory", common.ErrInvalidConfig, m.opts.Source)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(m.opts.Source); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", m.opts.Source, err)
	}
	m.fsw = fsw

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.mu.Lock()
	m.stats.StartedAt = time.Now()
	m.mu.Unlock()

	m.startWorkers(runCtx)
	m.wg.Add(1)
	go m.eventLoop(runCtx)

	m.opts.Logger.Info("monitoring started",
		"source", m.opts.Source,
		"target", m.opts.Target,
		"operation", m.opts.Operation,
	)
	return nil
}

func (m *Monitor) startWorkers(ctx context.Context) {
	for i := 0; i < m.opts.Workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx)
	}
}

func (m *Monitor) eventLoop(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			m.Enqueue(event.Name)
		case err, ok := <-m.fsw.Errors:
			if !ok {
				return
			}
			m.opts.Logger.Warn("watcher error", "error", err)
		}
	}
}

// Enqueue adds a path to the pending batch after filtering. The first
// path of a batch arms the debounce timer; reaching BatchSize flushes
// immediately.
func (m *Monitor) Enqueue(path string) {
	if !m.accepts(path) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pendingSet[path] || m.inFlight[path] || m.processed[path] {
		return
	}
	m.pending = append(m.pending, path)
	m.pendingSet[path] = true

	if len(m.pending) >= m.opts.BatchSize {
		m.flushLocked()
		return
	}
	if m.timer == nil {
		m.timer = time.AfterFunc(m.opts.DebounceDelay, m.flush)
	}
}

// accepts applies the exclude patterns and the size window. Directories
// and vanished files are rejected.
func (m *Monitor) accepts(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range m.opts.ExcludePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return false
		}
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if info.Size() < m.opts.MinFileSize {
		return false
	}
	if m.opts.MaxFileSize > 0 && info.Size() > m.opts.MaxFileSize {
		return false
	}
	return true
}

func (m *Monitor) flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()
}

// flushLocked hands the pending batch to the workers and disarms the
// debounce timer. Caller holds the mutex.
func (m *Monitor) flushLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	for _, path := range m.pending {
		delete(m.pendingSet, path)
		m.inFlight[path] = true
		select {
		case m.workCh <- path:
		default:
			delete(m.inFlight, path)
			m.opts.Logger.Warn("work queue full, dropping file", "path", path)
		}
	}
	m.pending = nil
}

func (m *Monitor) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-m.workCh:
			if !ok {
				return
			}
			m.process(ctx, path)
		}
	}
}

func (m *Monitor) process(ctx context.Context, path string) {
	err := m.waitStable(ctx, path)
	if err == nil {
		var batch *model.OperationBatch
		batch, err = m.classifier.ClassifySingle(ctx, path, m.opts.Target, m.opts.Operation)
		m.recordOutcome(path, batch, err)
		return
	}
	m.recordOutcome(path, nil, err)
}

func (m *Monitor) recordOutcome(path string, batch *model.OperationBatch, err error) {
	m.mu.Lock()

	delete(m.inFlight, path)
	m.processed[path] = true
	m.stats.Processed++

	failed := err != nil
	var results []model.FileRecord
	if batch != nil {
		results = batch.Files
		for _, record := range batch.Files {
			if !record.Success {
				failed = true
				continue
			}
			if m.stats.ByKind == nil {
				m.stats.ByKind = make(map[model.OperationKind]int)
			}
			m.stats.ByKind[record.Operation]++
			m.stats.BytesMoved += record.Size
		}
	}
	if failed {
		m.stats.Failed++
	}
	m.mu.Unlock()

	if failed {
		m.opts.Logger.Warn("failed to process file", "path", path, "error", err)
	} else {
		m.opts.Logger.Info("file classified", "path", path)
	}

	if m.opts.Results == nil {
		return
	}
	if len(results) == 0 {
		status := "failed"
		if err != nil {
			status = err.Error()
		}
		results = []model.FileRecord{{
			Timestamp: time.Now(),
			Filename:  filepath.Base(path),
			Source:    path,
			Operation: m.opts.Operation,
			Status:    status,
		}}
	}
	for _, record := range results {
		m.opts.Results(record)
	}
}

// waitStable blocks until the file's size and modification time have been
// identical for the configured number of polls in a row.
func (m *Monitor) waitStable(ctx context.Context, path string) error {
	deadline := time.After(m.opts.StabilityTimeout)
	ticker := time.NewTicker(m.opts.StabilityInterval)
	defer ticker.Stop()

	var lastSize int64 = -1
	var lastMod time.Time
	identical := 0

	for {
		select {
		case <-ctx.Done():
			return common.ErrWatcherStopped
		case <-deadline:
			return fmt.Errorf("%w: %s", common.ErrStabilityTimeout, path)
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("file disappeared while stabilizing: %w", err)
			}
			if info.Size() == lastSize && info.ModTime().Equal(lastMod) {
				identical++
				if identical >= m.opts.StabilityPolls-1 {
					return nil
				}
			} else {
				identical = 0
				lastSize = info.Size()
				lastMod = info.ModTime()
			}
		}
	}
}

// Stop shuts the monitor down: the watcher closes, the debounce timer is
// cancelled and the workers are joined with a bounded wait.
func (m *Monitor) Stop() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.fsw != nil {
		m.fsw.Close()
	}

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("%w: workers did not exit in time", common.ErrWatcherStopped)
	}
}

// Stats returns a snapshot of the monitor's counters.
func (m *Monitor) Stats() MonitorStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.stats
	if !snapshot.StartedAt.IsZero() {
		snapshot.Uptime = time.Since(snapshot.StartedAt)
	}
	if m.stats.ByKind != nil {
		snapshot.ByKind = make(map[model.OperationKind]int, len(m.stats.ByKind))
		for k, v := range m.stats.ByKind {
			snapshot.ByKind[k] = v
		}
	}
	return snapshot
}
