package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/model"
)

type fakeClassifier struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeClassifier) ClassifySingle(_ context.Context, path, _ string, kind model.OperationKind) (*model.OperationBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return &model.OperationBatch{
		ID:        "test",
		Operation: kind,
		Files: []model.FileRecord{{
			Filename:  filepath.Base(path),
			Source:    path,
			Operation: kind,
			Size:      4,
			Success:   true,
		}},
	}, nil
}

func (f *fakeClassifier) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func fastOptions(source, target string) Options {
	return Options{
		Source:            source,
		Target:            target,
		Operation:         model.OpMove,
		ExcludePatterns:   []string{".*", "*.tmp"},
		DebounceDelay:     30 * time.Millisecond,
		BatchSize:         10,
		Workers:           2,
		StabilityInterval: 5 * time.Millisecond,
		StabilityPolls:    2,
		StabilityTimeout:  time.Second,
	}
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	return path
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}

func TestEnqueueDebouncesIntoOneBatch(t *testing.T) {
	source := t.TempDir()
	fake := &fakeClassifier{}
	m, err := New(fake, fastOptions(source, t.TempDir()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.startWorkers(ctx)

	a := writeFile(t, source, "a.txt")
	b := writeFile(t, source, "b.txt")
	m.Enqueue(a)
	m.Enqueue(b)
	m.Enqueue(a) // duplicate while pending is ignored

	waitFor(t, func() bool { return len(fake.seen()) == 2 })
	assert.ElementsMatch(t, []string{a, b}, fake.seen())

	stats := m.Stats()
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 2, stats.ByKind[model.OpMove])
	assert.Equal(t, int64(8), stats.BytesMoved)
}

func TestEnqueueFlushesAtBatchSize(t *testing.T) {
	source := t.TempDir()
	fake := &fakeClassifier{}
	opts := fastOptions(source, t.TempDir())
	opts.BatchSize = 2
	opts.DebounceDelay = time.Hour // only the size trigger may flush
	m, err := New(fake, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.startWorkers(ctx)

	m.Enqueue(writeFile(t, source, "a.txt"))
	m.Enqueue(writeFile(t, source, "b.txt"))

	waitFor(t, func() bool { return len(fake.seen()) == 2 })
}

func TestEnqueueFiltersExcludedAndSizedFiles(t *testing.T) {
	source := t.TempDir()
	fake := &fakeClassifier{}
	opts := fastOptions(source, t.TempDir())
	opts.MinFileSize = 2
	opts.MaxFileSize = 10
	m, err := New(fake, opts)
	require.NoError(t, err)

	hidden := writeFile(t, source, ".hidden")
	temp := writeFile(t, source, "scratch.tmp")
	tiny := filepath.Join(source, "tiny.txt")
	require.NoError(t, os.WriteFile(tiny, []byte("x"), 0o644))
	big := filepath.Join(source, "big.txt")
	require.NoError(t, os.WriteFile(big, make([]byte, 20), 0o644))
	ok := writeFile(t, source, "fine.txt")

	for _, p := range []string{hidden, temp, tiny, big, ok} {
		m.Enqueue(p)
	}

	m.mu.Lock()
	pending := append([]string(nil), m.pending...)
	m.mu.Unlock()
	assert.Equal(t, []string{ok}, pending)
}

func TestProcessedFilesAreNotRequeued(t *testing.T) {
	source := t.TempDir()
	fake := &fakeClassifier{}
	m, err := New(fake, fastOptions(source, t.TempDir()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.startWorkers(ctx)

	path := writeFile(t, source, "once.txt")
	m.Enqueue(path)
	waitFor(t, func() bool { return len(fake.seen()) == 1 })

	m.Enqueue(path)
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, fake.seen(), 1)
}

func TestWaitStableTimesOut(t *testing.T) {
	source := t.TempDir()
	fake := &fakeClassifier{}
	opts := fastOptions(source, t.TempDir())
	opts.StabilityTimeout = 30 * time.Millisecond
	opts.StabilityInterval = 5 * time.Millisecond
	m, err := New(fake, opts)
	require.NoError(t, err)

	path := writeFile(t, source, "growing.txt")
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				f, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
				if f != nil {
					_, _ = f.WriteString("more")
					f.Close()
				}
				time.Sleep(2 * time.Millisecond)
			}
		}
	}()
	defer close(stop)

	err = m.waitStable(context.Background(), path)
	assert.Error(t, err)
}

func TestMonitorStartAndStop(t *testing.T) {
	source := t.TempDir()
	fake := &fakeClassifier{}
	m, err := New(fake, fastOptions(source, t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))

	writeFile(t, source, "incoming.txt")
	waitFor(t, func() bool { return len(fake.seen()) == 1 })

	require.NoError(t, m.Stop())
	stats := m.Stats()
	assert.Equal(t, 1, stats.Processed)
	assert.Greater(t, stats.Uptime, time.Duration(0))
}

func TestResultsCallbackReceivesRecords(t *testing.T) {
	source := t.TempDir()
	fake := &fakeClassifier{}
	opts := fastOptions(source, t.TempDir())

	var mu sync.Mutex
	var got []model.FileRecord
	opts.Results = func(r model.FileRecord) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, r)
	}
	records := func() []model.FileRecord {
		mu.Lock()
		defer mu.Unlock()
		return append([]model.FileRecord(nil), got...)
	}

	m, err := New(fake, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.startWorkers(ctx)

	m.Enqueue(writeFile(t, source, "a.txt"))
	waitFor(t, func() bool { return len(records()) == 1 })

	first := records()[0]
	assert.Equal(t, "a.txt", first.Filename)
	assert.True(t, first.Success)

	// A file that vanishes before processing still yields a record.
	gone := writeFile(t, source, "gone.txt")
	m.Enqueue(gone)
	require.NoError(t, os.Remove(gone))

	waitFor(t, func() bool { return len(records()) == 2 })
	second := records()[1]
	assert.Equal(t, "gone.txt", second.Filename)
	assert.False(t, second.Success)
	assert.NotEmpty(t, second.Status)
}

func TestNewRejectsInvalidOperation(t *testing.T) {
	_, err := New(&fakeClassifier{}, Options{Operation: model.OperationKind("shred")})
	assert.Error(t, err)
}
