// Package snapshot builds a depth/size-filtered, file-augmented
// projection of a tree.Tree subtree for presentation. A Snapshot is
// immutable once built and independent of the live tree: it lives in its
// own arena and is never mutated after construction.
package snapshot

import (
	"sort"

	"github.com/maruel/natural"
	"github.com/sadopc/diskmap/internal/arena"
	"github.com/sadopc/diskmap/internal/pathkey"
	"github.com/sadopc/diskmap/internal/tree"
)

// Config controls the depth and size filtering of a projection.
// MaxDepth = 0 materializes only the root node.
type Config struct {
	MaxDepth int
	MinSize  uint64
}

// DefaultConfig returns the spec's default projection: three levels deep,
// no size floor.
func DefaultConfig() Config {
	return Config{MaxDepth: 3, MinSize: 0}
}

// FileEntry is one direct file inside a directory, as reported by a
// FilesGetter.
type FileEntry struct {
	Name string
	Size uint64
}

// FilesGetter lazily lists the direct files of a directory at its native
// path. It is invoked only for directories with FileCount > 0, and only
// while building the snapshot — never cached across calls, never called
// for a directory a depth or size filter already excluded.
type FilesGetter func(nativePath string) ([]FileEntry, error)

// node is the arena payload for one projected entry — either a cloned
// directory or a lazily-fetched file.
type node struct {
	name     string
	size     uint64
	parent   arena.Id
	children []arena.Id
	isDir    bool
}

// Snapshot is an immutable projection rooted at one subtree.
type Snapshot struct {
	store *arena.Arena[node]
	root  arena.Id
}

// Node is a read handle into a Snapshot, exposed to callers (the UI) per
// spec §6.
type Node struct {
	s  *Snapshot
	id arena.Id
}

// Root returns the snapshot's root node.
func (s *Snapshot) Root() Node {
	return Node{s: s, id: s.root}
}

func (n Node) entry() node {
	e, _ := n.s.store.Get(n.id)
	return e
}

// Name returns the node's own name (not a full path).
func (n Node) Name() string { return n.entry().name }

// Size returns the node's size in bytes.
func (n Node) Size() uint64 { return n.entry().size }

// IsDir reports whether the node is a directory (as opposed to a
// lazily-fetched file entry).
func (n Node) IsDir() bool { return n.entry().isDir }

// Parent returns the node's parent, or (_, false) at the root.
func (n Node) Parent() (Node, bool) {
	e := n.entry()
	if e.parent == arena.NoID {
		return Node{}, false
	}
	return Node{s: n.s, id: e.parent}, true
}

// ChildrenCount returns the number of children materialized for this
// node (zero beyond the configured MaxDepth).
func (n Node) ChildrenCount() int { return len(n.entry().children) }

// NthChild returns the i'th child in (-size, name) order.
func (n Node) NthChild(i int) (Node, bool) {
	e := n.entry()
	if i < 0 || i >= len(e.children) {
		return Node{}, false
	}
	return Node{s: n.s, id: e.children[i]}, true
}

// Iter returns every child, in (-size, name) order.
func (n Node) Iter() []Node {
	e := n.entry()
	out := make([]Node, len(e.children))
	for i, c := range e.children {
		out[i] = Node{s: n.s, id: c}
	}
	return out
}

// Build projects the subtree rooted at root out of t, applying cfg's
// depth and size filters and merging in file entries from getFiles. It
// reports (_, false) if root is not a known directory in t — consistent
// with tree.Tree.Find's miss semantics. The whole projection runs under a
// single tree lock acquisition (tree.Tree.Inspect), so it is atomic with
// respect to concurrent reconciliation: a caller never observes a
// half-reconciled node mixed into the snapshot.
func Build(t *tree.Tree, root pathkey.PathKey, cfg Config, getFiles FilesGetter) (*Snapshot, bool) {
	var snap *Snapshot
	var found bool

	t.Inspect(func(r *tree.Reader) {
		rootID, ok := r.Find(root)
		if !ok {
			return
		}
		found = true
		store := arena.New[node]()
		rootNodeID := buildNode(r, rootID, cfg.MaxDepth, cfg, getFiles, store, arena.NoID)
		snap = &Snapshot{store: store, root: rootNodeID}
	})

	return snap, found
}

func buildNode(r *tree.Reader, entryID arena.Id, depthRemaining int, cfg Config, getFiles FilesGetter, store *arena.Arena[node], parent arena.Id) arena.Id {
	entry, _ := r.Entry(entryID)

	nodeID := store.InsertWithID(func(arena.Id) node {
		return node{name: entry.Name, size: uint64(entry.Size), parent: parent, isDir: true}
	})

	if depthRemaining == 0 {
		return nodeID
	}

	var children []arena.Id
	for _, childID := range entry.Children {
		ce, _ := r.Entry(childID)
		if uint64(ce.Size) < cfg.MinSize {
			// Children are sorted size-descending: once one falls below
			// the floor, every remaining sibling does too.
			break
		}
		children = append(children, buildNode(r, childID, depthRemaining-1, cfg, getFiles, store, nodeID))
	}

	if entry.FileCount > 0 && getFiles != nil {
		if path, ok := r.PathOf(entryID); ok {
			if files, err := getFiles(path.SerializeNative()); err == nil {
				for _, f := range files {
					if f.Size < cfg.MinSize {
						continue
					}
					children = append(children, store.InsertWithID(func(arena.Id) node {
						return node{name: f.Name, size: f.Size, parent: nodeID, isDir: false}
					}))
				}
			}
		}
	}

	sortChildren(store, children)
	n := store.GetMut(nodeID)
	n.children = children
	return nodeID
}

// sortChildren re-sorts the combined directory+file list by (-size,
// name): cloned directory children already arrive in this order, but
// merged-in files did not, so the combined list is always re-sorted.
func sortChildren(store *arena.Arena[node], ids []arena.Id) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, _ := store.Get(ids[i])
		b, _ := store.Get(ids[j])
		if a.size != b.size {
			return a.size > b.size
		}
		return natural.Less(a.name, b.name)
	})
}
