package ops

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadopc/diskmap/internal/pathkey"
	"github.com/sadopc/diskmap/internal/snapshot"
	"github.com/sadopc/diskmap/internal/tree"
)

// buildSnapshot is a small test helper: a tree.Tree with one directory
// and one direct file, snapshotted with no filtering, covers every
// export writeNode branch (directory array, nested file entry).
func buildSnapshot(t *testing.T, fileName string, fileSize uint64) *snapshot.Snapshot {
	t.Helper()
	tr := tree.New("/root")
	tr.SetChildren(pathkey.New("/root"), nil, 1, int64(fileSize))

	files := func(string) ([]snapshot.FileEntry, error) {
		return []snapshot.FileEntry{{Name: fileName, Size: fileSize}}, nil
	}
	snap, ok := snapshot.Build(tr, pathkey.New("/root"), snapshot.DefaultConfig(), files)
	if !ok {
		t.Fatal("expected snapshot build to succeed")
	}
	return snap
}

func TestExportJSON_Stdout(t *testing.T) {
	snap := buildSnapshot(t, "file.txt", 12)

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	os.Stdout = w

	exportErr := ExportJSON(snap, "-", "test-version")
	closeErr := w.Close()
	os.Stdout = oldStdout

	if exportErr != nil {
		t.Fatalf("ExportJSON returned error: %v", exportErr)
	}
	if closeErr != nil {
		t.Fatalf("closing pipe writer failed: %v", closeErr)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	out := strings.TrimSpace(string(data))
	if !strings.Contains(out, `"progver":"test-version"`) {
		t.Fatalf("expected version in export output, got:\n%s", out)
	}
	if !strings.Contains(out, `"name":"file.txt"`) {
		t.Fatalf("expected file entry in export output, got:\n%s", out)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("export output is not valid JSON: %v\n%s", err, out)
	}
	if len(raw) < 4 {
		t.Fatalf("expected ncdu format array with >=4 elements, got %d", len(raw))
	}
}

func TestExportJSON_AtomicNoPartialFile(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "output.json")

	snap := buildSnapshot(t, "a.txt", 1)
	if err := ExportJSON(snap, target, "test"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}

	reimported, err := ImportJSON(target)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if reimported.Size != 1 {
		t.Fatalf("expected size 1, got %d", reimported.Size)
	}
}

func TestExportJSON_OverwriteExistingFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "scan.json")

	if err := ExportJSON(buildSnapshot(t, "a.txt", 1), path, "test"); err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	if err := ExportJSON(buildSnapshot(t, "b.txt", 7), path, "test"); err != nil {
		t.Fatalf("second export failed: %v", err)
	}

	imported, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if imported.Size != 7 {
		t.Fatalf("expected overwritten export size 7, got %d", imported.Size)
	}
	if len(imported.Children) != 1 || imported.Children[0].Name != "b.txt" {
		t.Fatalf("expected overwritten export to contain b.txt, got %+v", imported.Children)
	}
}
