package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFSNotify_AddIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewFSNotify(nil)
	defer w.Close()

	fsw, ok := w.(*FSNotify)
	if !ok {
		t.Skip("fsnotify backend unavailable on this platform, got Noop")
	}

	if err := fsw.Add(dir); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if err := fsw.Add(dir); err != nil {
		t.Fatalf("second Add on the same path should be a no-op success, got: %v", err)
	}
}

func TestFSNotify_ReadEventsCoalescesByParent(t *testing.T) {
	dir := t.TempDir()
	w := NewFSNotify(nil)
	defer w.Close()

	fsw, ok := w.(*FSNotify)
	if !ok {
		t.Skip("fsnotify backend unavailable on this platform, got Noop")
	}
	if err := fsw.Add(dir); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		name := filepath.Join(dir, "f"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	var events []Event
	for time.Now().Before(deadline) {
		events = w.ReadEvents()
		if len(events) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(events) == 0 {
		t.Fatal("expected at least one coalesced event for three writes in the same directory")
	}
	for _, ev := range events {
		if ev.UpdatedPath != dir {
			t.Fatalf("expected coalesced parent %q, got %q", dir, ev.UpdatedPath)
		}
	}
}

func TestFSNotify_ReadEventsEmptyWhenIdle(t *testing.T) {
	w := NewFSNotify(nil)
	defer w.Close()

	if got := w.ReadEvents(); len(got) != 0 {
		t.Fatalf("expected no events on an idle watcher, got %v", got)
	}
}
