package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain verifies Stop leaves no event-loop or debounce-timer goroutine
// behind, the property Watcher.Stop's doc comment promises.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("time.Sleep"),
	)
}

// eventRecorder collects callback invocations under a mutex so tests can
// poll it safely from another goroutine.
type eventRecorder struct {
	mu      sync.Mutex
	changed []string
	removed []string
}

func (r *eventRecorder) onChanged(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, path)
}

func (r *eventRecorder) onRemoved(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
}

func (r *eventRecorder) changedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changed)
}

func (r *eventRecorder) removedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.removed)
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	rec := &eventRecorder{}
	w, err := New(50*time.Millisecond, Callbacks{OnChanged: rec.onChanged, OnRemoved: rec.onRemoved}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(file, []byte("v2"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	waitUntil(t, 2*time.Second, func() bool { return rec.changedCount() > 0 })
	require.Equal(t, 1, rec.changedCount(), "rapid writes to the same path should coalesce into one OnChanged")
}

func TestWatcher_RemoveFiresImmediately(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	rec := &eventRecorder{}
	w, err := New(200*time.Millisecond, Callbacks{OnChanged: rec.onChanged, OnRemoved: rec.onRemoved}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))
	defer w.Stop()

	require.NoError(t, os.Remove(file))

	waitUntil(t, 2*time.Second, func() bool { return rec.removedCount() > 0 })
	require.Zero(t, rec.changedCount(), "a pending debounce for a removed path must be cancelled")
}

func TestWatcher_IgnoresVendoredDirectories(t *testing.T) {
	dir := t.TempDir()
	ignored := filepath.Join(dir, "node_modules")
	require.NoError(t, os.Mkdir(ignored, 0o755))
	ignoredFile := filepath.Join(ignored, "c.txt")
	require.NoError(t, os.WriteFile(ignoredFile, []byte("v1"), 0o644))

	rec := &eventRecorder{}
	w, err := New(30*time.Millisecond, Callbacks{OnChanged: rec.onChanged, OnRemoved: rec.onRemoved}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))
	defer w.Stop()

	require.NoError(t, os.WriteFile(ignoredFile, []byte("v2"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.Zero(t, rec.changedCount(), "writes under an ignored directory must not be watched")
}

func TestWatcher_StopIsIdempotentWithPendingTimers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "d.txt")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	rec := &eventRecorder{}
	w, err := New(500*time.Millisecond, Callbacks{OnChanged: rec.onChanged, OnRemoved: rec.onRemoved}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))

	require.NoError(t, os.WriteFile(file, []byte("v2"), 0o644))
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
