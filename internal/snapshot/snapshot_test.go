package snapshot

import (
	"testing"

	"github.com/sadopc/diskmap/internal/pathkey"
	"github.com/sadopc/diskmap/internal/tree"
)

func buildS1Tree() *tree.Tree {
	tr := tree.New("/data/mnt")
	root := pathkey.New("/data/mnt")
	tr.SetChildren(root, []string{"dir1"}, 2, 25)
	dir1 := root.AppendSegment("dir1")
	tr.SetChildren(dir1, []string{"dir2"}, 1, 25)
	dir2 := dir1.AppendSegment("dir2")
	tr.SetChildren(dir2, nil, 3, 25)
	return tr
}

func s1Files(nativePath string) ([]FileEntry, error) {
	switch nativePath {
	case "/data/mnt":
		return []FileEntry{{Name: "file2", Size: 10}, {Name: "file1", Size: 15}}, nil
	case "/data/mnt/dir1":
		return []FileEntry{{Name: "file3", Size: 25}}, nil
	case "/data/mnt/dir1/dir2":
		return []FileEntry{{Name: "file4", Size: 5}, {Name: "file5", Size: 10}, {Name: "file6", Size: 10}}, nil
	}
	return nil, nil
}

func names(n Node) []string {
	out := make([]string, 0, n.ChildrenCount())
	for _, c := range n.Iter() {
		out = append(out, c.Name())
	}
	return out
}

// S1: root children order dir1(50), file1(15), file2(10).
func TestScenario_S1_Listing(t *testing.T) {
	tr := buildS1Tree()
	root := pathkey.New("/data/mnt")

	snap, ok := Build(tr, root, Config{MaxDepth: 3}, s1Files)
	if !ok {
		t.Fatal("Build missed root")
	}

	rootNode := snap.Root()
	if rootNode.Size() != 75 {
		t.Fatalf("root size = %d, want 75", rootNode.Size())
	}
	got := names(rootNode)
	want := []string{"dir1", "file1", "file2"}
	if !equal(got, want) {
		t.Fatalf("root children = %v, want %v", got, want)
	}
}

// S5: max_depth=1, min_size=12 yields root children [dir1(50), file1(15)];
// dir1 itself has no children in the snapshot.
func TestScenario_S5_DepthAndMinSizeFilter(t *testing.T) {
	tr := buildS1Tree()
	root := pathkey.New("/data/mnt")

	snap, ok := Build(tr, root, Config{MaxDepth: 1, MinSize: 12}, s1Files)
	if !ok {
		t.Fatal("Build missed root")
	}

	rootNode := snap.Root()
	got := names(rootNode)
	want := []string{"dir1", "file1"}
	if !equal(got, want) {
		t.Fatalf("root children = %v, want %v", got, want)
	}

	dir1, ok := rootNode.NthChild(0)
	if !ok || dir1.Name() != "dir1" {
		t.Fatalf("expected dir1 as first child, got %+v", dir1)
	}
	if dir1.ChildrenCount() != 0 {
		t.Fatalf("dir1.ChildrenCount() = %d, want 0 at max_depth=1", dir1.ChildrenCount())
	}
}

// Boundary: max_depth=0 yields only the root.
func TestBoundary_MaxDepthZero(t *testing.T) {
	tr := buildS1Tree()
	root := pathkey.New("/data/mnt")

	snap, ok := Build(tr, root, Config{MaxDepth: 0}, s1Files)
	if !ok {
		t.Fatal("Build missed root")
	}
	if n := snap.Root().ChildrenCount(); n != 0 {
		t.Fatalf("ChildrenCount() = %d, want 0", n)
	}
}

// Boundary: min_size exceeding the root's size yields a childless root.
func TestBoundary_MinSizeExceedsRoot(t *testing.T) {
	tr := buildS1Tree()
	root := pathkey.New("/data/mnt")

	snap, ok := Build(tr, root, Config{MaxDepth: 3, MinSize: 1_000_000}, s1Files)
	if !ok {
		t.Fatal("Build missed root")
	}
	if n := snap.Root().ChildrenCount(); n != 0 {
		t.Fatalf("ChildrenCount() = %d, want 0", n)
	}
}

// Invariant 6: two snapshots with an unchanged tree and an identical
// FilesGetter are structurally identical.
func TestInvariant_SnapshotIdempotent(t *testing.T) {
	tr := buildS1Tree()
	root := pathkey.New("/data/mnt")

	a, _ := Build(tr, root, Config{MaxDepth: 3}, s1Files)
	b, _ := Build(tr, root, Config{MaxDepth: 3}, s1Files)

	if !structurallyEqual(a.Root(), b.Root()) {
		t.Fatal("two snapshots of an unchanged tree differ")
	}
}

func TestMiss_UnknownPath(t *testing.T) {
	tr := buildS1Tree()
	other := pathkey.New("/other")
	if _, ok := Build(tr, other, DefaultConfig(), s1Files); ok {
		t.Fatal("Build should miss on an unknown path")
	}
}

func structurallyEqual(a, b Node) bool {
	if a.Name() != b.Name() || a.Size() != b.Size() || a.IsDir() != b.IsDir() {
		return false
	}
	ac, bc := a.Iter(), b.Iter()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !structurallyEqual(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func equal(a, b []string) bool {
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
