package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/diskmap/internal/ui/components"
)

func TestAppFatalError_SetOnScanReadyError(t *testing.T) {
	app := NewApp("/tmp")
	scanErr := errors.New("scan failed")

	_, cmd := app.Update(ScanReadyMsg{Err: scanErr})
	if !errors.Is(app.FatalError(), scanErr) {
		t.Fatalf("expected fatal error %v, got %v", scanErr, app.FatalError())
	}
	if cmd == nil {
		t.Fatal("expected quit command on scan error")
	}
	msg := cmd()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", msg)
	}
}

func TestAppFatalError_SetOnImportError(t *testing.T) {
	app := NewAppFromImport("/tmp/export.json")
	importErr := errors.New("bad json")

	_, cmd := app.Update(ImportDoneMsg{Err: importErr})
	if !errors.Is(app.FatalError(), importErr) {
		t.Fatalf("expected fatal error %v, got %v", importErr, app.FatalError())
	}
	if cmd == nil {
		t.Fatal("expected quit command on import error")
	}
}

func TestAppFatalError_NotSetByStatusMessages(t *testing.T) {
	app := NewApp("/tmp")

	_, _ = app.Update(ExportDoneMsg{Path: "out.json"})
	if app.FatalError() != nil {
		t.Fatalf("expected nil fatal error, got %v", app.FatalError())
	}
	if app.statusMsg == "" {
		t.Fatal("expected status message to be set for successful export")
	}
}

func TestAppMarkedSize_ComputesFromVisibleRows(t *testing.T) {
	app := NewApp("/tmp")
	app.rows = []components.Row{
		{Name: "a.txt", Size: 10, NativePath: "/tmp/root/a.txt"},
		{Name: "b.txt", Size: 4, NativePath: "/tmp/root/b.txt"},
	}
	app.marked = map[string]bool{
		"/tmp/root/a.txt":       true,
		"/tmp/root/missing.txt": true, // marked but not among the visible rows
	}

	if got := app.markedSize(); got != 10 {
		t.Fatalf("expected marked size 10, got %d", got)
	}
}

func TestAppToggleMark_AddsAndRemoves(t *testing.T) {
	app := NewApp("/tmp")
	app.rows = []components.Row{
		{Name: "a.txt", Size: 10, NativePath: "/tmp/root/a.txt"},
	}

	app.toggleMark()
	if !app.marked["/tmp/root/a.txt"] {
		t.Fatal("expected a.txt to be marked")
	}

	app.cursor = 0
	app.toggleMark()
	if app.marked["/tmp/root/a.txt"] {
		t.Fatal("expected a.txt to be unmarked")
	}
}

func TestAppImportMode_DeleteDisabled(t *testing.T) {
	app := NewAppFromImport("/tmp/export.json")
	app.state = StateBrowsing
	app.rows = []components.Row{{Name: "a.txt", Size: 10, IsDir: false}}

	app.prepareDelete()
	if app.state == StateConfirmDelete {
		t.Fatal("expected delete to be disabled in import mode")
	}
	if app.statusMsg == "" {
		t.Fatal("expected a status message explaining delete is disabled")
	}
}
