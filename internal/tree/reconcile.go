package tree

import (
	"github.com/sadopc/diskmap/internal/arena"
	"github.com/sadopc/diskmap/internal/pathkey"
)

// SetChildren is the only mutator the scanner uses. Given a freshly
// observed directory listing (discoveredDirs, the direct subdirectory
// names) and a direct-file summary (fileCount, fileBytes) for the
// directory at path, it reconciles in-memory state to match, preserving
// the subtrees of directories whose identity did not change, and reports
// the names of directories that did not previously exist. A (_, false)
// result means path is unknown to the tree — not an error, see spec
// §4.3 "Failure semantics".
func (t *Tree) SetChildren(path pathkey.PathKey, discoveredDirs []string, fileCount, fileBytes int64) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.find(path)
	if !ok {
		return nil, false
	}

	e, _ := t.store.Get(id)

	// Step 2: mark all existing children.
	existing := append([]arena.Id(nil), e.children...)
	for _, childID := range existing {
		c := t.store.GetMut(childID)
		c.marked = true
	}

	// Step 3: update file_count bookkeeping now; size is recomputed below
	// once children have been reconciled.
	mut := t.store.GetMut(id)
	mut.fileCount = fileCount
	t.totalFiles += fileCount - e.fileCount

	// Step 4: reconcile discovered directories against existing children.
	var added []string
	for _, name := range discoveredDirs {
		parentEntry, _ := t.store.Get(id)
		fp := parentEntry.pathFP.Child(name)

		var found arena.Id = arena.NoID
		for _, candidate := range t.index[fp] {
			ce, ok := t.store.Get(candidate)
			if !ok {
				continue
			}
			if ce.parent == id && ce.name == name {
				found = candidate
				break
			}
		}

		if found != arena.NoID {
			c := t.store.GetMut(found)
			c.marked = false
			continue
		}

		newID := t.store.InsertWithID(func(newID arena.Id) dirEntry {
			return dirEntry{name: name, parent: id, pathFP: fp}
		})
		t.indexInsert(fp, newID)
		t.addChild(id, newID)
		t.totalDirs++
		added = append(added, name)
	}

	// Step 5: anything still marked was not rediscovered; remove it (and
	// its whole subtree) recursively.
	parentEntry, _ := t.store.Get(id)
	remaining := append([]arena.Id(nil), parentEntry.children...)
	for _, childID := range remaining {
		c, ok := t.store.Get(childID)
		if ok && c.marked {
			p := t.store.GetMut(id)
			p.children = removeChildFromSlice(p.children, childID)
			t.removeSubtree(childID)
		}
	}

	// Recompute this node's total size from its (now-final) children plus
	// local file bytes, and propagate the change upward, resorting this
	// node within its parent's children as needed.
	final, _ := t.store.Get(id)
	var childrenTotal int64
	for _, childID := range final.children {
		ce, _ := t.store.Get(childID)
		childrenTotal += ce.size
	}
	newTotal := fileBytes + childrenTotal

	if newTotal != final.size {
		if final.parent != arena.NoID {
			t.sizeChanged(final.parent, id, newTotal)
		} else {
			root := t.store.GetMut(id)
			root.size = newTotal
		}
	}

	return added, true
}

// removeSubtree recursively deletes id and every descendant: for each
// removed id the fingerprint-index entry is dropped, children are freed
// first, then the arena slot itself. The caller is responsible for
// unlinking id from its own parent's children slice before calling this.
func (t *Tree) removeSubtree(id arena.Id) {
	e, ok := t.store.Get(id)
	if !ok {
		return
	}
	for _, childID := range e.children {
		t.removeSubtree(childID)
	}
	t.indexRemove(e.pathFP, id)
	t.totalFiles -= e.fileCount
	t.totalDirs--
	t.store.Remove(id)
}
