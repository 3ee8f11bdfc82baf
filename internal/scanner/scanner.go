// Package scanner drives the background directory walk that keeps an
// internal/tree.Tree current: a single worker goroutine merges watcher
// events and client-submitted rescan requests into a coalescing task
// queue, reads directories with os.ReadDir, and reconciles each into the
// tree via Tree.SetChildren. It is the only writer of the tree.
package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sadopc/diskmap/internal/pathkey"
	"github.com/sadopc/diskmap/internal/platform"
	"github.com/sadopc/diskmap/internal/snapshot"
	"github.com/sadopc/diskmap/internal/tree"
	"github.com/sadopc/diskmap/internal/watcher"
)

// idlePoll is how long the worker sleeps between empty queue polls, per
// spec §4.5 step 4.
const idlePoll = 10 * time.Millisecond

// ScanTask is a unit of work for the background worker: a path plus
// recursion and timing flags (spec §4.5).
type ScanTask struct {
	Path           pathkey.PathKey
	Recursive      bool
	ResetStopwatch bool
}

// Stats summarizes scan progress and, where available, mount-level
// free-space and memory diagnostics (spec §6 ScanStats). The boolean
// companions mirror the spec's Option<T> fields: a backend that cannot
// answer leaves the value zeroed and its companion false.
type Stats struct {
	UsedSize      uint64
	TotalSize     uint64
	AvailableSize uint64
	HasMountStats bool
	IsMountPoint  bool
	Files         int64
	Dirs          int64
	ScanDuration  time.Duration
	UsedMemory    uint64
	HasUsedMemory bool
}

// Builder configures a Scanner before it starts scanning, in the style
// of the teacher's functional-options-free config structs: defaults are
// sane, and every With* call returns the same *Builder for chaining.
type Builder struct {
	log      *slog.Logger
	services platform.Services
	newWatch func(*slog.Logger) watcher.Watcher
}

// NewBuilder returns a Builder with production defaults: gopsutil-backed
// platform.Services and an fsnotify-backed Watcher.
func NewBuilder() *Builder {
	return &Builder{
		log:      slog.Default(),
		services: platform.Default(),
		newWatch: watcher.NewFSNotify,
	}
}

// WithLogger overrides the default slog.Logger.
func (b *Builder) WithLogger(log *slog.Logger) *Builder {
	b.log = log
	return b
}

// WithServices overrides the platform.Services backend, e.g. with a fake
// in tests.
func (b *Builder) WithServices(s platform.Services) *Builder {
	b.services = s
	return b
}

// WithWatcher overrides the Watcher construction function.
func (b *Builder) WithWatcher(newWatch func(*slog.Logger) watcher.Watcher) *Builder {
	b.newWatch = newWatch
	return b
}

// Scan constructs a Scanner rooted at rootPath and starts its worker.
// rootPath is resolved to an absolute native path and becomes the single
// opaque root segment of every PathKey the scanner produces (spec §4.1's
// "root need not be '/'").
func (b *Builder) Scan(rootPath string) (*Scanner, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}
	abs = filepath.Clean(abs)

	excluded := make(map[string]bool)
	if paths, err := b.services.ExcludedPaths(); err != nil {
		b.log.Warn("scanner: could not determine excluded paths", "err", err)
	} else {
		for _, p := range paths {
			excluded[filepath.Clean(p)] = true
		}
	}

	s := &Scanner{
		log:        b.log,
		services:   b.services,
		watch:      b.newWatch(b.log),
		tree:       tree.New(abs),
		rootKey:    pathkey.New(abs),
		rootNative: abs,
		excluded:   excluded,
		mailbox:    make(chan ScanTask, 64),
		done:       make(chan struct{}),
	}
	s.runFlag.Store(true)
	s.submit(ScanTask{Path: s.rootKey, Recursive: true, ResetStopwatch: true})

	go s.run()
	return s, nil
}

// Scanner is the background worker plus the non-blocking accessors spec
// §6 exposes to foreground callers (the UI). All fields besides the
// mutex-guarded current path, the atomics, and the fields fixed at
// construction are owned exclusively by the worker goroutine.
type Scanner struct {
	log      *slog.Logger
	services platform.Services
	watch    watcher.Watcher
	tree     *tree.Tree

	rootKey    pathkey.PathKey
	rootNative string
	excluded   map[string]bool

	queue   taskQueue
	mailbox chan ScanTask

	currentMu sync.Mutex
	current   *pathkey.PathKey

	isScanning     atomic.Bool
	scanDurationMs atomic.Int64
	runFlag        atomic.Bool

	startedAt time.Time
	done      chan struct{}
}

// ScanPath returns the root PathKey this Scanner was constructed with.
func (s *Scanner) ScanPath() pathkey.PathKey { return s.rootKey }

// CurrentScanPath returns the directory the worker is visiting right
// now, or (_, false) between tasks.
func (s *Scanner) CurrentScanPath() (pathkey.PathKey, bool) {
	s.currentMu.Lock()
	defer s.currentMu.Unlock()
	if s.current == nil {
		return pathkey.PathKey{}, false
	}
	return *s.current, true
}

// IsScanning reports whether the worker is mid-interval (between a
// ResetStopwatch task arriving and the queue subsequently draining).
func (s *Scanner) IsScanning() bool { return s.isScanning.Load() }

// Stats returns a point-in-time summary of tree size plus, where the
// platform backend can answer, mount free-space and process memory.
func (s *Scanner) Stats() Stats {
	treeStats := s.tree.Stats()
	out := Stats{
		UsedSize:     uint64(treeStats.UsedBytes),
		Files:        treeStats.Files,
		Dirs:         treeStats.Dirs,
		ScanDuration: time.Duration(s.scanDurationMs.Load()) * time.Millisecond,
	}
	if mnt, ok := s.services.MountStats(s.rootNative); ok {
		out.TotalSize = mnt.TotalBytes
		out.AvailableSize = mnt.AvailableBytes
		out.IsMountPoint = mnt.IsMountPoint
		out.HasMountStats = true
	}
	if mem, ok := s.services.UsedMemory(); ok {
		out.UsedMemory = mem
		out.HasUsedMemory = true
	}
	return out
}

// Snapshot projects the subtree at path through cfg's depth/size filters,
// lazily listing files via os.ReadDir + platform.Services.FileSize. It
// reports (_, false) if path is not currently known to the tree.
func (s *Scanner) Snapshot(path pathkey.PathKey, cfg snapshot.Config) (*snapshot.Snapshot, bool) {
	return snapshot.Build(s.tree, path, cfg, s.listFiles)
}

// Rescan enqueues a recursive task for path, which walks path and every
// descendant (spec §4.5 "Rescan semantics"). Non-recursive tasks come
// only from watcher events, never from Rescan.
func (s *Scanner) Rescan(path pathkey.PathKey, resetStopwatch bool) {
	select {
	case s.mailbox <- ScanTask{Path: path, Recursive: true, ResetStopwatch: resetStopwatch}:
	default:
		// Mailbox full: the worker will catch up to the existing backlog,
		// and a later explicit rescan can always be issued again.
		s.log.Warn("scanner: rescan mailbox full, dropping request", "path", path.String())
	}
}

// Close stops the worker and releases its watcher. It blocks until the
// worker has observed the run flag and returned, mirroring the teacher's
// drop-then-join destructor pattern (spec §5 "Cancellation / shutdown").
func (s *Scanner) Close() error {
	s.runFlag.Store(false)
	<-s.done
	return s.watch.Close()
}

func (s *Scanner) listFiles(nativePath string) ([]snapshot.FileEntry, error) {
	entries, err := os.ReadDir(nativePath)
	if err != nil {
		return nil, err
	}
	files := make([]snapshot.FileEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			s.log.Warn("scanner: stat failed, skipping entry", "path", filepath.Join(nativePath, e.Name()), "err", err)
			continue
		}
		files = append(files, snapshot.FileEntry{Name: e.Name(), Size: s.services.FileSize(info)})
	}
	return files, nil
}
