package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeletePath_File(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "victim.txt")
	if err := os.WriteFile(f, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !Default().DeletePath(f) {
		t.Fatal("DeletePath returned false for a deletable file")
	}
	if _, err := os.Stat(f); !os.IsNotExist(err) {
		t.Fatalf("file still exists after DeletePath: err=%v", err)
	}
}

func TestDeletePath_DirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "subdir")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !Default().DeletePath(sub) {
		t.Fatal("DeletePath returned false for a deletable directory")
	}
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Fatalf("directory still exists after DeletePath: err=%v", err)
	}
}

func TestDeletePath_MissingPathSucceeds(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist")
	// os.RemoveAll on a missing path is actually a no-op success, mirroring
	// the stdlib's own idempotent-delete semantics.
	if !Default().DeletePath(missing) {
		t.Fatal("DeletePath on a missing path should still report success (idempotent)")
	}
}
