package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestImportJSON_RejectsUnexpectedChildElement(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "bad.json")
	data := `[1,0,{"progname":"diskmap","progver":"dev","timestamp":0},[{"name":"/tmp/root"},123,{"name":"ok.txt","asize":1,"dsize":1}]]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportJSON(path)
	if err == nil {
		t.Fatal("expected malformed child element to fail import")
	}
	if !strings.Contains(err.Error(), "unexpected child element at index 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestImportJSON_RejectsTrailingGarbage(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "trailing.json")
	data := `[1,0,{"progname":"diskmap","progver":"dev","timestamp":0},[{"name":"/tmp/root"}]]
garbage`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportJSON(path)
	if err == nil {
		t.Fatal("expected trailing data to fail import")
	}
	if !strings.Contains(err.Error(), "trailing data") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateName_SlashAlwaysRejected(t *testing.T) {
	if err := validateName("a/b"); err == nil {
		t.Fatal("expected slash to be rejected")
	}
}

func TestValidateName_BackslashAllowedOnUnix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("backslash is a path separator on Windows")
	}
	if err := validateName(`a\b`); err != nil {
		t.Fatalf("expected backslash to be allowed on Unix, got: %v", err)
	}
}

func TestImportJSON_DirectoryWithFileRoundTrip(t *testing.T) {
	snap := buildSnapshot(t, "file.txt", 10)

	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested.json")
	if err := ExportJSON(snap, path, "test"); err != nil {
		t.Fatalf("export: %v", err)
	}

	imported, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !imported.IsDir {
		t.Fatal("expected imported root to be a directory")
	}
	if len(imported.Children) != 1 || imported.Children[0].Name != "file.txt" {
		t.Fatalf("expected a single file.txt child, got %+v", imported.Children)
	}
	if imported.Children[0].Parent != imported {
		t.Fatal("expected imported child's Parent to point back at the root")
	}
}

func TestImportJSON_DepthLimit(t *testing.T) {
	// Build JSON with nesting > maxImportDepth
	var b strings.Builder
	b.WriteString(`[1,0,{"progname":"diskmap","progver":"dev","timestamp":0},`)
	for i := 0; i <= maxImportDepth+1; i++ {
		b.WriteString(`[{"name":"d"},`)
	}
	b.WriteString(`{"name":"f","asize":1}`)
	for i := 0; i <= maxImportDepth+1; i++ {
		b.WriteString(`]`)
	}
	b.WriteString(`]`)

	tmp := t.TempDir()
	path := filepath.Join(tmp, "deep.json")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportJSON(path)
	if err == nil {
		t.Fatal("expected depth limit error")
	}
	if !strings.Contains(err.Error(), "maximum depth") {
		t.Fatalf("unexpected error: %v", err)
	}
}
