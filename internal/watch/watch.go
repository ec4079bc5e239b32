// Package watch recursively watches a workspace root for filesystem
// changes (C11) and drives incremental re-indexing: Write/Create events
// are debounced before calling reindex_file; Remove/Rename events call
// project_index.remove_file directly.
package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default coalescing window for write/create
// events against the same path.
const DefaultDebounce = 150 * time.Millisecond

var ignoredDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
}

// Callbacks: OnRemoved is invoked from the watcher's event-processing
// goroutine; OnChanged runs on its debounce timer's own goroutine, so it
// may run concurrently with OnRemoved or with OnChanged for another path.
type Callbacks struct {
	OnChanged func(path string) // debounced Write/Create
	OnRemoved func(path string) // immediate Remove/Rename
}

// Watcher owns one fsnotify.Watcher recursively registered under a root,
// plus a per-path debounce timer for change events.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	cb       Callbacks
	logger   *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer

	done chan struct{}
}

// New builds a Watcher with the given debounce window and callbacks. It
// does not start watching until Start is called.
func New(debounce time.Duration, cb Callbacks, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		cb:       cb,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Start recursively registers root and every non-ignored subdirectory for
// filesystem events, then begins dispatching them in a background
// goroutine. Start is symmetric with Stop: call Stop to tear everything
// down before discarding the Watcher.
func (w *Watcher) Start(root string) error {
	if err := w.addTree(root); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the underlying fsnotify watcher, waits for the event loop to
// exit, and cancels every debounce timer that has not yet fired.
func (w *Watcher) Stop() error {
	err := w.fsw.Close()
	<-w.done
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if path != root && (ignoredDirs[name] || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancelDebounce(event.Name)
		if w.cb.OnRemoved != nil {
			w.cb.OnRemoved(event.Name)
		}
	case event.Op&fsnotify.Create != 0:
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			name := filepath.Base(event.Name)
			if !ignoredDirs[name] && !strings.HasPrefix(name, ".") {
				if err := w.fsw.Add(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
		w.debounceChange(event.Name)
	case event.Op&fsnotify.Write != 0:
		w.debounceChange(event.Name)
	}
}

func (w *Watcher) debounceChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		if w.cb.OnChanged != nil {
			w.cb.OnChanged(path)
		}
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}
