package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/diskmap/internal/pathkey"
)

// run is the single background worker (spec §4.5 "Worker loop"). It owns
// every field not otherwise guarded by a mutex or atomic.
func (s *Scanner) run() {
	defer close(s.done)
	for s.runFlag.Load() {
		s.drainWatcher()
		s.drainMailbox()

		task, ok := s.queue.pop()
		if !ok {
			time.Sleep(idlePoll)
			continue
		}
		s.visit(task)
		s.afterTask()
	}
}

// submit merges t into the internal queue, starting a new timing
// interval first if t arrives with ResetStopwatch set while the scanner
// is idle (spec §4.5 step 2).
func (s *Scanner) submit(t ScanTask) {
	if t.ResetStopwatch && !s.isScanning.Load() {
		s.startedAt = time.Now()
		s.isScanning.Store(true)
	}
	s.queue.push(t)
}

// drainWatcher maps every pending watcher event to a non-recursive task
// on its reported directory (spec §4.5 step 1). Events for paths outside
// the scan root, or which no longer resolve to a reachable relative
// path, are ignored.
func (s *Scanner) drainWatcher() {
	for _, ev := range s.watch.ReadEvents() {
		key, ok := s.nativeToPathKey(ev.UpdatedPath)
		if !ok {
			continue
		}
		s.submit(ScanTask{Path: key, Recursive: false, ResetStopwatch: false})
	}
}

// drainMailbox merges every task a foreground caller submitted via
// Rescan since the last iteration (spec §4.5 step 2).
func (s *Scanner) drainMailbox() {
	for {
		select {
		case t := <-s.mailbox:
			s.submit(t)
		default:
			return
		}
	}
}

// visit processes one popped task: it registers the directory with the
// watcher, reads its entries, and reconciles the result into the tree
// (spec §4.5 steps 5-9).
func (s *Scanner) visit(task ScanTask) {
	native := task.Path.SerializeNative()
	if s.excluded[native] {
		return
	}

	if err := s.watch.Add(native); err != nil {
		s.log.Warn("scanner: watcher registration failed", "path", native, "err", err)
	}
	s.setCurrent(task.Path)

	entries, err := os.ReadDir(native)
	if err != nil {
		s.log.Warn("scanner: read directory failed", "path", native, "err", err)
		return
	}

	var dirCandidates []string
	var fileCount, fileBytes int64

	for _, e := range entries {
		name := e.Name()
		info, err := e.Info()
		if err != nil {
			s.log.Warn("scanner: stat failed", "path", filepath.Join(native, name), "err", err)
			continue
		}

		// Symlinks are never followed for recursion purposes; they are
		// accounted for as a plain file entry. e.Info() does not follow the
		// link, so the size counted is the link's own, not its target's
		// (spec §4.5 step 8).
		if info.Mode()&os.ModeSymlink != 0 {
			fileCount++
			fileBytes += int64(s.services.FileSize(info))
			continue
		}

		if e.IsDir() {
			dirCandidates = append(dirCandidates, name)
			if task.Recursive {
				s.submit(ScanTask{
					Path:           task.Path.AppendSegment(name),
					Recursive:      true,
					ResetStopwatch: false,
				})
			}
			continue
		}

		fileCount++
		fileBytes += int64(s.services.FileSize(info))
	}

	added, ok := s.tree.SetChildren(task.Path, dirCandidates, fileCount, fileBytes)
	if !ok {
		// The directory vanished from the tree between being queued and
		// being visited (an ancestor was reconciled away); nothing to do.
		return
	}

	// A non-recursive task (typically watcher-driven) that turns up
	// brand-new subdirectories schedules a recursive task for each, so a
	// freshly created subtree gets its first full visit (spec §4.5.1
	// "Rescan semantics").
	if !task.Recursive {
		for _, name := range added {
			s.submit(ScanTask{
				Path:           task.Path.AppendSegment(name),
				Recursive:      true,
				ResetStopwatch: false,
			})
		}
	}
}

// afterTask updates the running scan duration and, once the queue has
// fully drained, clears current_scan_path and flips is_scanning off
// (spec §4.5 step 10).
func (s *Scanner) afterTask() {
	if s.isScanning.Load() {
		s.scanDurationMs.Store(time.Since(s.startedAt).Milliseconds())
	}
	if s.queue.len() > 0 {
		return
	}
	// The queue has drained: current_scan_path always goes back to empty,
	// even for a watcher-driven task that never flipped is_scanning on
	// (ResetStopwatch=false), or CurrentScanPath keeps reporting the last
	// directory visited long after the scanner is idle again.
	s.clearCurrent()
	if !s.isScanning.Load() {
		return
	}
	s.isScanning.Store(false)
	s.log.Info("scanner: scan complete", "root", s.rootKey.String(), "duration_ms", s.scanDurationMs.Load())
}

func (s *Scanner) setCurrent(p pathkey.PathKey) {
	s.currentMu.Lock()
	defer s.currentMu.Unlock()
	cp := p
	s.current = &cp
}

func (s *Scanner) clearCurrent() {
	s.currentMu.Lock()
	defer s.currentMu.Unlock()
	s.current = nil
}

// nativeToPathKey converts a native filesystem path reported by the
// watcher back into a PathKey relative to the scan root, or (_, false)
// if it falls outside the root.
func (s *Scanner) nativeToPathKey(native string) (pathkey.PathKey, bool) {
	native = filepath.Clean(native)
	if native == s.rootNative {
		return s.rootKey, true
	}
	rel, err := filepath.Rel(s.rootNative, native)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return pathkey.PathKey{}, false
	}
	key := s.rootKey
	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		key = key.AppendSegment(seg)
	}
	return key, true
}
