package tree

import (
	"testing"

	"github.com/sadopc/diskmap/internal/arena"
	"github.com/sadopc/diskmap/internal/pathkey"
)

func mustFind(t *testing.T, tr *Tree, path pathkey.PathKey) arena.Id {
	t.Helper()
	id, ok := tr.Find(path)
	if !ok {
		t.Fatalf("Find(%v) missed", path)
	}
	return id
}

func childNames(t *testing.T, tr *Tree, id arena.Id) []string {
	t.Helper()
	e, ok := tr.Entry(id)
	if !ok {
		t.Fatalf("Entry(%v) missing", id)
	}
	names := make([]string, len(e.Children))
	for i, c := range e.Children {
		ce, _ := tr.Entry(c)
		names[i] = ce.Name
	}
	return names
}

// S1: build a small tree and verify aggregate stats.
func TestScenario_S1_BuildAndStats(t *testing.T) {
	root := pathkey.New("/data/mnt")
	tr := New("/data/mnt")

	added, ok := tr.SetChildren(root, []string{"dir1"}, 2, 25)
	if !ok || len(added) != 1 || added[0] != "dir1" {
		t.Fatalf("SetChildren(root) = %v, %v", added, ok)
	}

	dir1Path := root.AppendSegment("dir1")
	added, ok = tr.SetChildren(dir1Path, []string{"dir2"}, 1, 25)
	if !ok || len(added) != 1 || added[0] != "dir2" {
		t.Fatalf("SetChildren(dir1) = %v, %v", added, ok)
	}

	dir2Path := dir1Path.AppendSegment("dir2")
	added, ok = tr.SetChildren(dir2Path, nil, 3, 25)
	if !ok || len(added) != 0 {
		t.Fatalf("SetChildren(dir2) = %v, %v", added, ok)
	}

	stats := tr.Stats()
	if stats.UsedBytes != 75 {
		t.Errorf("UsedBytes = %d, want 75", stats.UsedBytes)
	}
	if stats.Files != 6 {
		t.Errorf("Files = %d, want 6", stats.Files)
	}
	if stats.Dirs != 2 {
		t.Errorf("Dirs = %d, want 2 (dir1, dir2; root excluded)", stats.Dirs)
	}
}

// S2: a size change on one sibling must resort the children list.
func TestScenario_S2_SizeTriggeredResort(t *testing.T) {
	tr := New("/root")
	rootPath := pathkey.New("/root")

	// d1=6 d2=5 d3=3 d4=3 d5=2, each with one file of that size and no
	// subdirectories (so the directory's own size equals its file bytes).
	tr.SetChildren(rootPath, []string{"d1", "d2", "d3", "d4", "d5"}, 0, 0)
	for name, size := range map[string]int64{"d1": 6, "d2": 5, "d3": 3, "d4": 3, "d5": 2} {
		p := rootPath.AppendSegment(name)
		tr.SetChildren(p, nil, 1, size)
	}

	rootID := mustFind(t, tr, rootPath)
	got := childNames(t, tr, rootID)
	want := []string{"d1", "d2", "d3", "d4", "d5"}
	if !equalSlices(got, want) {
		t.Fatalf("initial order = %v, want %v", got, want)
	}

	// Bump d4 to 7: expect [d4(7), d1(6), d2(5), d3(3), d5(2)].
	d4 := rootPath.AppendSegment("d4")
	tr.SetChildren(d4, nil, 1, 7)

	got = childNames(t, tr, rootID)
	want = []string{"d4", "d1", "d2", "d3", "d5"}
	if !equalSlices(got, want) {
		t.Fatalf("resorted order = %v, want %v", got, want)
	}
}

// S3: reconcile to empty removes the stale subtree and frees its ids.
func TestScenario_S3_ReconcileRemovesStaleSubtree(t *testing.T) {
	tr := New("/data/mnt")
	root := pathkey.New("/data/mnt")
	tr.SetChildren(root, []string{"dir1"}, 2, 25)
	dir1 := root.AppendSegment("dir1")
	tr.SetChildren(dir1, []string{"dir2"}, 1, 25)
	dir2 := dir1.AppendSegment("dir2")
	tr.SetChildren(dir2, nil, 3, 25)

	added, ok := tr.SetChildren(root, nil, 0, 0)
	if !ok || len(added) != 0 {
		t.Fatalf("SetChildren(root, []) = %v, %v", added, ok)
	}

	stats := tr.Stats()
	if stats.Dirs != 0 || stats.Files != 0 || stats.UsedBytes != 0 {
		t.Fatalf("stats after wipe = %+v, want {0 0 0}", stats)
	}

	if _, ok := tr.Find(dir1); ok {
		t.Fatal("dir1 should have been removed")
	}
	if _, ok := tr.Find(dir2); ok {
		t.Fatal("dir2 should have been removed")
	}
}

// Invariant 5: after SetChildren, direct subdirectory names at path equal
// the discovered set, regardless of call order across rescans.
func TestInvariant_SetChildrenMatchesDiscoveredSet(t *testing.T) {
	tr := New("/r")
	root := pathkey.New("/r")

	tr.SetChildren(root, []string{"a", "b", "c"}, 0, 0)
	if got := childNames(t, tr, mustFind(t, tr, root)); !equalSetOf(got, []string{"a", "b", "c"}) {
		t.Fatalf("got %v", got)
	}

	// Rescan drops b, adds d.
	tr.SetChildren(root, []string{"a", "c", "d"}, 0, 0)
	if got := childNames(t, tr, mustFind(t, tr, root)); !equalSetOf(got, []string{"a", "c", "d"}) {
		t.Fatalf("got %v", got)
	}
}

// Rescan idempotence: identical SetChildren calls on a quiescent tree
// leave an identical tree (ids preserved, order preserved).
func TestLaw_RescanIdempotence(t *testing.T) {
	tr := New("/r")
	root := pathkey.New("/r")
	tr.SetChildren(root, []string{"a", "b"}, 2, 30)
	a := root.AppendSegment("a")
	tr.SetChildren(a, nil, 1, 10)

	idBefore := mustFind(t, tr, a)
	tr.SetChildren(root, []string{"a", "b"}, 2, 30)
	idAfter := mustFind(t, tr, a)

	if idBefore != idAfter {
		t.Fatalf("id for 'a' changed across idempotent rescan: %v -> %v", idBefore, idAfter)
	}
	if stats := tr.Stats(); stats.UsedBytes != 40 {
		t.Fatalf("UsedBytes after idempotent rescan = %d, want 40", stats.UsedBytes)
	}
}

// Boundary: empty directory.
func TestBoundary_EmptyDirectory(t *testing.T) {
	tr := New("/r")
	root := pathkey.New("/r")
	added, ok := tr.SetChildren(root, nil, 0, 0)
	if !ok || len(added) != 0 {
		t.Fatalf("SetChildren empty = %v, %v", added, ok)
	}
	stats := tr.Stats()
	if stats.UsedBytes != 0 || stats.Files != 0 {
		t.Fatalf("stats = %+v, want zero", stats)
	}
	if got := childNames(t, tr, mustFind(t, tr, root)); len(got) != 0 {
		t.Fatalf("children = %v, want none", got)
	}
}

// Boundary: root path with and without a trailing separator share identity.
func TestBoundary_TrailingSeparatorIdentity(t *testing.T) {
	tr := New("/data/mnt")
	withSlash := pathkey.FromNative("/data/mnt/")
	id, ok := tr.Find(withSlash)
	if !ok || id != tr.RootID() {
		t.Fatalf("trailing-separator lookup failed: id=%v ok=%v", id, ok)
	}
}

func TestFind_MissOnUnrelatedPath(t *testing.T) {
	tr := New("/data/mnt")
	other := pathkey.New("/other/root")
	if _, ok := tr.Find(other); ok {
		t.Fatal("Find on an incomparable path should miss")
	}
}

func TestAddChild_DuplicateSiblingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate (size, name) sibling")
		}
	}()
	tr := New("/r")
	root := pathkey.New("/r")
	tr.SetChildren(root, []string{"a"}, 0, 0)
	rootID := tr.RootID()
	// Craft a second child with the exact same (size=0, name="a") to
	// trigger the duplicate-sibling assertion directly.
	tr.addChild(rootID, tr.store.Insert(dirEntry{name: "a", parent: rootID}))
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalSetOf(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int)
	for _, x := range a {
		seen[x]++
	}
	for _, x := range b {
		seen[x]--
	}
	for _, v := range seen {
		if v != 0 {
			return false
		}
	}
	return true
}
