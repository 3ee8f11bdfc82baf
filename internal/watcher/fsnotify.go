package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FSNotify is the cross-platform Watcher backend built on
// github.com/fsnotify/fsnotify, one registration per directory the
// scanner visits (the "per-directory registration model with a bounded
// kernel delivery buffer" spec §4.6 names as one of two acceptable
// designs). Grounded on the pack's own fsnotify usage (an internal file
// watcher wired the same way: New, per-path Add, a non-blocking drain
// loop over Events/Errors).
type FSNotify struct {
	fsw *fsnotify.Watcher
	log *slog.Logger

	mu           sync.Mutex
	registered   map[string]bool
	demoted      bool
	pendingMu    sync.Mutex
	pendingPaths map[string]bool
}

// NewFSNotify starts a new fsnotify-backed watcher. If the underlying
// platform watcher cannot be created at all, it returns a Noop and logs
// the cause, rather than failing the scanner's construction.
func NewFSNotify(log *slog.Logger) Watcher {
	if log == nil {
		log = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("watcher: backend unavailable, falling back to manual rescan only", "err", err)
		return Noop{}
	}
	w := &FSNotify{
		fsw:          fsw,
		log:          log,
		registered:   make(map[string]bool),
		pendingPaths: make(map[string]bool),
	}
	go w.drain()
	return w
}

// Add registers path, idempotently. The first time fsnotify fails to add
// a path (e.g. inotify watch-limit exhaustion), the backend is demoted and
// Add returns ErrUnavailable; further calls are silent no-ops per spec §7.
func (w *FSNotify) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.demoted || w.registered[path] {
		return nil
	}
	if err := w.fsw.Add(path); err != nil {
		w.log.Warn("watcher: add failed, demoting to no-op", "path", path, "err", err)
		w.demoted = true
		return ErrUnavailable
	}
	w.registered[path] = true
	return nil
}

// drain runs for the lifetime of the watcher, coalescing raw fsnotify
// events onto their parent directory (spec §4.6: "coalesced ... the
// scanner merely maps each event to a non-recursive task on the reported
// parent path").
func (w *FSNotify) drain() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			parent := filepath.Dir(ev.Name)
			w.pendingMu.Lock()
			w.pendingPaths[parent] = true
			w.pendingMu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher: backend error", "err", err)
		}
	}
}

// ReadEvents drains the coalesced set of changed parent directories
// without blocking.
func (w *FSNotify) ReadEvents() []Event {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if len(w.pendingPaths) == 0 {
		return nil
	}
	events := make([]Event, 0, len(w.pendingPaths))
	for p := range w.pendingPaths {
		events = append(events, Event{UpdatedPath: p})
		delete(w.pendingPaths, p)
	}
	return events
}

// Close releases the fsnotify watcher and all its registrations.
func (w *FSNotify) Close() error {
	return w.fsw.Close()
}
