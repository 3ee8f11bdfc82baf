// Package tree implements the arena-backed directory tree: the in-memory
// mirror of a scanned filesystem subtree, kept always sorted by
// descending size and reconciled incrementally as the scanner revisits
// directories.
package tree

import (
	"sync"

	"github.com/sadopc/diskmap/internal/arena"
	"github.com/sadopc/diskmap/internal/pathkey"
)

// dirEntry is one directory in the scanned tree. Files are never
// allocated as tree nodes; a directory folds its direct files into
// fileCount and its own size, per spec: this bounds resident memory at
// O(#directories) rather than O(#files).
type dirEntry struct {
	name      string
	size      int64 // children dirs + local files, always >= 0
	fileCount int64
	parent    arena.Id
	children  []arena.Id // kept sorted by (-size, name)
	pathFP    pathkey.Fingerprint
	marked    bool // transient, used only during SetChildren
}

// Entry is a read-only snapshot of a dirEntry, returned by Reader.Entry.
type Entry struct {
	ID        arena.Id
	Name      string
	Size      int64
	FileCount int64
	Parent    arena.Id
	Children  []arena.Id
	PathFP    pathkey.Fingerprint
}

// Tree is a root arena id plus an Arena[dirEntry] and a fingerprint index
// for O(1)-expected path lookup. All operations lock a single mutex, so a
// caller never observes a half-reconciled node (spec §5).
type Tree struct {
	mu         sync.Mutex
	store      *arena.Arena[dirEntry]
	root       arena.Id
	index      map[pathkey.Fingerprint][]arena.Id
	totalFiles int64
	totalDirs  int64 // child directories only; excludes the root
}

// New creates a Tree whose root is named rootName (the scan root, treated
// as an opaque single path segment — see pathkey.PathKey).
func New(rootName string) *Tree {
	t := &Tree{
		store: arena.New[dirEntry](),
		index: make(map[pathkey.Fingerprint][]arena.Id),
	}
	fp := pathkey.New(rootName).Fingerprint()
	t.root = t.store.InsertWithID(func(id arena.Id) dirEntry {
		return dirEntry{name: rootName, parent: arena.NoID, pathFP: fp}
	})
	t.indexInsert(fp, t.root)
	return t
}

// RootID returns the arena id of the root directory.
func (t *Tree) RootID() arena.Id {
	return t.root
}

// Reader exposes read-only tree access to a callback already holding the
// tree's lock, via Inspect. A Reader must not be used outside its Inspect
// call.
type Reader struct {
	t *Tree
}

// Inspect locks the tree and runs fn with read access, guaranteeing fn
// observes a single consistent state even if the scanner is concurrently
// reconciling other parts of the tree (it also holds the same lock).
func (t *Tree) Inspect(fn func(r *Reader)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&Reader{t: t})
}

// Find returns the id of the directory at path, or (_, false) if path is
// unknown to the tree. A miss is a normal outcome, not an error: the path
// may have been scanned away.
func (r *Reader) Find(path pathkey.PathKey) (arena.Id, bool) {
	return r.t.find(path)
}

// Entry returns a read-only copy of the entry at id.
func (r *Reader) Entry(id arena.Id) (Entry, bool) {
	return r.t.entryView(id)
}

// RootID returns the arena id of the root directory.
func (r *Reader) RootID() arena.Id {
	return r.t.root
}

// PathOf reconstructs the full PathKey of id, for callers (the snapshot
// projector) that need to re-derive a native filesystem path while still
// holding the tree's lock.
func (r *Reader) PathOf(id arena.Id) (pathkey.PathKey, bool) {
	return r.t.pathOf(id)
}

// Find is the locking convenience form of Reader.Find, for callers that
// only need a single lookup rather than a multi-step Inspect.
func (t *Tree) Find(path pathkey.PathKey) (arena.Id, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.find(path)
}

// Entry is the locking convenience form of Reader.Entry.
func (t *Tree) Entry(id arena.Id) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entryView(id)
}

// Stats summarizes the current tree state: total directories (the root
// itself is not counted, matching spec §8's S1 expectation), total
// direct-file count across all directories, and the root's accumulated
// size.
type Stats struct {
	Dirs      int64
	Files     int64
	UsedBytes int64
}

// Stats returns an atomic snapshot of tree-wide aggregates.
func (t *Tree) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	root, _ := t.store.Get(t.root)
	return Stats{
		Dirs:      t.totalDirs,
		Files:     t.totalFiles,
		UsedBytes: root.size,
	}
}

// PathOf reconstructs the full PathKey of id by walking parent links
// upward and reversing, or false if id is not live.
func (t *Tree) PathOf(id arena.Id) (pathkey.PathKey, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pathOf(id)
}

func (t *Tree) pathOf(id arena.Id) (pathkey.PathKey, bool) {
	var names []string
	cur := id
	for {
		e, ok := t.store.Get(cur)
		if !ok {
			return pathkey.PathKey{}, false
		}
		names = append(names, e.name)
		if e.parent == arena.NoID {
			break
		}
		cur = e.parent
	}
	// names were collected leaf-to-root; reverse them.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return pathkey.New(names...), true
}

func (t *Tree) entryView(id arena.Id) (Entry, bool) {
	e, ok := t.store.Get(id)
	if !ok {
		return Entry{}, false
	}
	children := append([]arena.Id(nil), e.children...)
	return Entry{
		ID:        id,
		Name:      e.name,
		Size:      e.size,
		FileCount: e.fileCount,
		Parent:    e.parent,
		Children:  children,
		PathFP:    e.pathFP,
	}, true
}

// find implements spec §4.3 Find: compare the root's path against path;
// if equal, return root; if root is an ancestor, look up the fingerprint
// bin and disambiguate collisions by walking parents; otherwise miss.
func (t *Tree) find(path pathkey.PathKey) (arena.Id, bool) {
	rootPath, ok := t.pathOf(t.root)
	if !ok {
		return arena.NoID, false
	}
	switch pathkey.Compare(rootPath, path) {
	case pathkey.Equal:
		return t.root, true
	case pathkey.Less:
		// root is a strict ancestor of path
	default:
		return arena.NoID, false
	}

	for _, candidate := range t.index[path.Fingerprint()] {
		candPath, ok := t.pathOf(candidate)
		if !ok {
			continue
		}
		if pathkey.Compare(candPath, path) == pathkey.Equal {
			return candidate, true
		}
	}
	return arena.NoID, false
}

func (t *Tree) indexInsert(fp pathkey.Fingerprint, id arena.Id) {
	t.index[fp] = append(t.index[fp], id)
}

// indexRemove removes id from fp's bin by swap-remove (the bin is a short
// vector, so linear scan plus swap is cheaper than preserving order).
func (t *Tree) indexRemove(fp pathkey.Fingerprint, id arena.Id) {
	bin := t.index[fp]
	for i, candidate := range bin {
		if candidate == id {
			last := len(bin) - 1
			bin[i] = bin[last]
			bin = bin[:last]
			break
		}
	}
	if len(bin) == 0 {
		delete(t.index, fp)
	} else {
		t.index[fp] = bin
	}
}
