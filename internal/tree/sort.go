package tree

import (
	"sort"

	"github.com/maruel/natural"
	"github.com/sadopc/diskmap/internal/arena"
)

// sortKey orders children by (-size, name): descending size, natural
// (digit-aware) ascending name on ties, so "file2" sorts before "file10"
// instead of after it.
func sortKey(aSize int64, aName string, bSize int64, bName string) bool {
	if aSize != bSize {
		return aSize > bSize
	}
	return natural.Less(aName, bName)
}

// childSort describes a child purely by its sort key, used for binary
// search without touching the arena on every comparison.
type childSort struct {
	id   arena.Id
	size int64
	name string
}

// sortedChildren materializes the (size, name) key for every id in
// children, in its current stored order (which must already be sorted).
func (t *Tree) sortedChildren(children []arena.Id) []childSort {
	out := make([]childSort, len(children))
	for i, id := range children {
		e, _ := t.store.Get(id)
		out[i] = childSort{id: id, size: e.size, name: e.name}
	}
	return out
}

// insertionIndex returns the index at which a child with key (size, name)
// belongs within a list already sorted by (-size, name).
func insertionIndex(keys []childSort, size int64, name string) int {
	return sort.Search(len(keys), func(i int) bool {
		// Find the first index whose key is NOT "less than" (size, name)
		// in sort order — i.e. the first legal insertion point.
		return !sortKey(keys[i].size, keys[i].name, size, name)
	})
}

// addChild splices childID into parentID's children at its sorted
// position. It asserts no duplicate (size, name) sibling exists —
// duplicate siblings are a programming bug, not a runtime error (spec
// §4.3 "Failure semantics").
func (t *Tree) addChild(parentID, childID arena.Id) {
	parent, _ := t.store.Get(parentID)
	child, _ := t.store.Get(childID)

	keys := t.sortedChildren(parent.children)
	idx := insertionIndex(keys, child.size, child.name)
	if idx < len(keys) && keys[idx].size == child.size && keys[idx].name == child.name {
		panic("tree: duplicate (size, name) sibling on addChild: " + child.name)
	}

	p := t.store.GetMut(parentID)
	p.children = append(p.children, arena.NoID)
	copy(p.children[idx+1:], p.children[idx:len(p.children)-1])
	p.children[idx] = childID

	c := t.store.GetMut(childID)
	c.parent = parentID

	if child.size != 0 {
		t.cascadeSizeChange(parentID, child.size)
	}
}

// removeChildFromSlice deletes id from a parent's children slice in
// place, preserving order of the remaining elements.
func removeChildFromSlice(children []arena.Id, id arena.Id) []arena.Id {
	for i, c := range children {
		if c == id {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}

// sizeChanged updates childID's cached size and keeps parentID's children
// sorted. Equivalent in outcome to spec §4.3's "locate by old key, find
// insertion index for the new key, rotate the slice by one position" —
// expressed here as a remove-then-insert, which is the idiomatic Go way
// to reposition a single element in a sorted slice and produces the same
// final ordering in the same O(n) bound.
func (t *Tree) sizeChanged(parentID, childID arena.Id, newSize int64) {
	child, _ := t.store.Get(childID)
	if child.size == newSize {
		return
	}
	prevSize := child.size
	name := child.name

	parent, _ := t.store.Get(parentID)
	p := t.store.GetMut(parentID)
	p.children = removeChildFromSlice(p.children, childID)

	keys := t.sortedChildren(p.children)
	idx := insertionIndex(keys, newSize, name)
	p.children = append(p.children, arena.NoID)
	copy(p.children[idx+1:], p.children[idx:len(p.children)-1])
	p.children[idx] = childID

	c := t.store.GetMut(childID)
	c.size = newSize

	newParentSize := parent.size + (newSize - prevSize)
	if parent.parent != arena.NoID {
		t.sizeChanged(parent.parent, parentID, newParentSize)
	} else {
		root := t.store.GetMut(parentID)
		root.size = newParentSize
	}
}

// cascadeSizeChange propagates a newly-attached non-empty subtree's size
// up through its ancestors, resorting each ancestor's children as it
// goes. Used by addChild when the attached child already carries size
// (e.g. grafting a previously-detached subtree); freshly discovered
// directories start at size 0 and need no cascade yet.
func (t *Tree) cascadeSizeChange(parentID arena.Id, childSize int64) {
	parent, _ := t.store.Get(parentID)
	if parent.parent == arena.NoID {
		p := t.store.GetMut(parentID)
		p.size += childSize
		return
	}
	t.sizeChanged(parent.parent, parentID, parent.size+childSize)
}
