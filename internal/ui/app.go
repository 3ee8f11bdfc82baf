package ui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/diskmap/internal/ops"
	"github.com/sadopc/diskmap/internal/pathkey"
	"github.com/sadopc/diskmap/internal/platform"
	"github.com/sadopc/diskmap/internal/scanner"
	"github.com/sadopc/diskmap/internal/snapshot"
	"github.com/sadopc/diskmap/internal/ui/components"
	"github.com/sadopc/diskmap/internal/ui/style"
)

// AppState represents the application state.
type AppState int

const (
	StateScanning AppState = iota
	StateBrowsing
	StateConfirmDelete
	StateHelp
	StateExporting
)

// listDepth is how deep a Snapshot is projected for a single directory
// listing: the current node plus its direct children is all the tree view
// ever renders at once.
const listDepth = 1

// exportMaxDepth bounds how deep an export projection walks, mirroring
// ImportJSON's maxImportDepth so a round-tripped tree never exceeds what
// re-import can parse back.
const exportMaxDepth = 1000

// ScanReadyMsg is sent once the background scanner has been constructed
// and its worker goroutine started. The scan itself continues in the
// background; this message does not mean the scan is complete.
type ScanReadyMsg struct {
	Scanner *scanner.Scanner
	Err     error
}

// ImportDoneMsg is sent when a JSON import finishes.
type ImportDoneMsg struct {
	Root *ops.ImportedNode
	Err  error
}

type tickMsg time.Time

// DeleteDoneMsg is sent when deletion completes.
type DeleteDoneMsg struct {
	Deleted []string
	Errors  []error
}

// ExportDoneMsg is sent when export completes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// App is the root Bubble Tea model. It polls the background Scanner for
// stats and a depth-1 Snapshot of the browsed directory on every tick,
// rather than owning any directory state itself.
type App struct {
	ScanPath   string
	ImportPath string
	ExportPath string
	Version    string

	// MaxDepth bounds how deep an export projection walks; zero selects
	// exportMaxDepth. MinSize hides entries smaller than it, both in
	// browsing and in export, mirroring the CLI's -max-depth/-min-size.
	// An export in import mode writes the whole imported tree and applies
	// neither.
	MaxDepth int
	MinSize  uint64

	// Services overrides the scanner's platform.Services backend, e.g. to
	// merge CLI-specified exclusions into ExcludedPaths. Nil selects
	// scanner.NewBuilder's production default.
	Services platform.Services

	state  AppState
	width  int
	height int

	sc          *scanner.Scanner
	currentPath pathkey.PathKey
	navStack    []pathkey.PathKey

	imported    bool
	impRoot     *ops.ImportedNode
	impCurrent  *ops.ImportedNode
	impStack    []*ops.ImportedNode
	impChildren []*ops.ImportedNode
	impFiles    int64
	impDirs     int64

	rows       []components.Row
	parentSize uint64
	cursor     int
	offset     int

	marked      map[string]bool
	markedItems []components.ConfirmItem

	// ShowHidden controls dotfile visibility; toggled at runtime with
	// KeyMap.ToggleHidden.
	ShowHidden bool

	stats scanner.Stats

	theme  style.Theme
	keys   KeyMap
	layout style.Layout

	statusMsg string
	fatalErr  error
}

// NewApp creates an App that drives a live background scan of scanPath.
func NewApp(scanPath string) *App {
	return &App{
		ScanPath:   scanPath,
		state:      StateScanning,
		marked:     make(map[string]bool),
		ShowHidden: true,
		theme:      style.DefaultTheme(),
		keys:       DefaultKeyMap(),
	}
}

// NewAppFromImport creates an App that browses a previously exported
// JSON tree instead of running a live scan.
func NewAppFromImport(importPath string) *App {
	return &App{
		ImportPath: importPath,
		state:      StateScanning,
		marked:     make(map[string]bool),
		ShowHidden: true,
		imported:   true,
		theme:      style.DefaultTheme(),
		keys:       DefaultKeyMap(),
	}
}

func (a *App) Init() tea.Cmd {
	if a.ImportPath != "" {
		return a.importCmd()
	}
	return tea.Batch(a.scanCmd(), a.tickCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = style.NewLayout(msg.Width, msg.Height)
		return a, nil

	case ScanReadyMsg:
		if msg.Err != nil {
			a.fatalErr = msg.Err
			return a, tea.Quit
		}
		a.fatalErr = nil
		a.sc = msg.Scanner
		a.currentPath = a.sc.ScanPath()
		return a, nil

	case ImportDoneMsg:
		if msg.Err != nil {
			a.fatalErr = msg.Err
			return a, tea.Quit
		}
		a.fatalErr = nil
		a.impRoot = msg.Root
		a.impCurrent = msg.Root
		a.impStack = nil
		a.impFiles, a.impDirs = countImported(msg.Root)
		a.cursor = 0
		a.offset = 0
		a.state = StateBrowsing
		a.refreshImportedRows()
		return a, tea.ClearScreen

	case tickMsg:
		a.onTick()
		return a, a.tickCmd()

	case DeleteDoneMsg:
		a.state = StateBrowsing
		a.clearMarks()
		if a.sc != nil {
			a.sc.Rescan(a.currentPath, false)
		}
		a.refreshLiveRows()
		a.clampCursor()
		if len(msg.Errors) > 0 {
			a.statusMsg = fmt.Sprintf("Delete: %d failed (%v)", len(msg.Errors), msg.Errors[0])
		} else if len(msg.Deleted) > 0 {
			a.statusMsg = fmt.Sprintf("Deleted %d item(s)", len(msg.Deleted))
		}
		return a, tea.ClearScreen

	case ExportDoneMsg:
		a.state = StateBrowsing
		if msg.Err != nil {
			a.statusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			a.statusMsg = fmt.Sprintf("Exported to %s", msg.Path)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// onTick refreshes scanner stats every interval and, while browsing a live
// scan, re-projects the current directory so watcher-driven changes show
// up without an explicit rescan.
func (a *App) onTick() {
	if a.imported || a.sc == nil {
		return
	}
	a.stats = a.sc.Stats()

	if a.state == StateScanning {
		if !a.sc.IsScanning() {
			a.state = StateBrowsing
			a.refreshLiveRows()
		}
		return
	}
	if a.state == StateBrowsing {
		a.refreshLiveRows()
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		a.closeScanner()
		return a, tea.Quit
	}

	switch a.state {
	case StateScanning:
		if key.Matches(msg, a.keys.Quit) {
			a.closeScanner()
			return a, tea.Quit
		}
		return a, nil

	case StateHelp:
		if key.Matches(msg, a.keys.Help) || msg.String() == "esc" {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateConfirmDelete:
		if key.Matches(msg, a.keys.ConfirmYes) {
			return a, a.executeDelete()
		}
		if key.Matches(msg, a.keys.ConfirmNo) {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateBrowsing:
		return a.handleBrowsingKey(msg)
	}

	return a, nil
}

func (a *App) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.statusMsg = ""
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.closeScanner()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.state = StateHelp
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.Enter), key.Matches(msg, a.keys.Right):
		a.enterDir()
	case key.Matches(msg, a.keys.Left), key.Matches(msg, a.keys.Back):
		a.goBack()

	case key.Matches(msg, a.keys.ToggleHidden):
		a.ShowHidden = !a.ShowHidden
		a.clearMarks()
		a.refreshRows()

	case key.Matches(msg, a.keys.Mark):
		a.toggleMark()

	case key.Matches(msg, a.keys.Delete):
		a.prepareDelete()
		if a.state == StateConfirmDelete {
			return a, tea.ClearScreen
		}

	case key.Matches(msg, a.keys.Export):
		return a, a.exportCmd()

	case key.Matches(msg, a.keys.Rescan):
		if a.imported {
			a.statusMsg = "Rescan is disabled in import mode"
			return a, nil
		}
		a.sc.Rescan(a.sc.ScanPath(), true)
		a.currentPath = a.sc.ScanPath()
		a.navStack = nil
		a.clearMarks()
		a.cursor = 0
		a.offset = 0
		a.state = StateScanning
		return a, tea.ClearScreen
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.state {
	case StateScanning:
		return components.RenderScanProgress(a.theme, a.stats, a.currentNativeDisplay(), a.width, a.height)

	case StateHelp:
		return components.RenderHelp(a.theme, a.width, a.height)

	case StateConfirmDelete:
		return components.RenderConfirmDialog(a.theme, a.markedItems, a.width, a.height)

	case StateBrowsing, StateExporting:
		return a.renderBrowsing()
	}

	return ""
}

func (a *App) renderBrowsing() string {
	var header, breadcrumb string
	if a.imported {
		header = components.RenderHeader(a.theme, a.impRoot.Name, a.impFiles, a.impDirs, a.impRoot.Size, a.width)
		breadcrumb = components.RenderBreadcrumb(a.theme, importBreadcrumb(a.impCurrent), a.width)
	} else {
		header = components.RenderHeader(a.theme, a.sc.ScanPath().SerializeNative(), a.stats.Files, a.stats.Dirs, a.stats.UsedSize, a.width)
		breadcrumb = components.RenderBreadcrumb(a.theme, liveBreadcrumb(a.currentPath), a.width)
	}

	tv := &components.TreeView{
		Theme:      a.theme,
		Layout:     a.layout,
		Items:      a.rows,
		Cursor:     a.cursor,
		Offset:     a.offset,
		Marked:     a.marked,
		ParentSize: a.parentSize,
	}
	tv.EnsureVisible()
	a.offset = tv.Offset
	content := tv.Render()

	statusInfo := components.StatusInfo{
		DirSize:     a.parentSize,
		ItemCount:   len(a.rows),
		MarkedCount: len(a.marked),
		MarkedSize:  a.markedSize(),
		ShowHidden:  a.ShowHidden,
		ErrorMsg:    a.statusMsg,
	}
	statusBar := components.RenderStatusBar(a.theme, statusInfo, a.width)

	return header + "\n" + breadcrumb + "\n" + content + "\n" + statusBar
}

// liveBreadcrumb renders a PathKey's segments, with the opaque root
// segment (the scan root's absolute native path) as the first crumb.
func liveBreadcrumb(p pathkey.PathKey) []string {
	return append([]string(nil), p.Segments()...)
}

func importBreadcrumb(n *ops.ImportedNode) []string {
	var segments []string
	for node := n; node != nil; node = node.Parent {
		segments = append([]string{node.Name}, segments...)
	}
	return segments
}

func (a *App) currentNativeDisplay() string {
	if a.sc == nil {
		return ""
	}
	if p, ok := a.sc.CurrentScanPath(); ok {
		return p.SerializeNative()
	}
	return ""
}

func (a *App) moveCursor(delta int) {
	a.cursor += delta
	a.clampCursor()
}

func (a *App) clampCursor() {
	if a.cursor >= len(a.rows) {
		a.cursor = len(a.rows) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) enterDir() {
	if a.cursor >= len(a.rows) || !a.rows[a.cursor].IsDir {
		return
	}
	if a.imported {
		child := a.impChildren[a.cursor]
		a.impStack = append(a.impStack, a.impCurrent)
		a.impCurrent = child
	} else {
		name := a.rows[a.cursor].Name
		a.navStack = append(a.navStack, a.currentPath)
		a.currentPath = a.currentPath.AppendSegment(name)
	}
	a.cursor = 0
	a.offset = 0
	a.clearMarks()
	a.refreshRows()
}

func (a *App) goBack() {
	if a.imported {
		if len(a.impStack) == 0 {
			return
		}
		leavingName := a.impCurrent.Name
		a.impCurrent = a.impStack[len(a.impStack)-1]
		a.impStack = a.impStack[:len(a.impStack)-1]
		a.clearMarks()
		a.refreshRows()
		a.selectByName(leavingName)
		return
	}

	if len(a.navStack) == 0 {
		return
	}
	leavingName := a.currentPath.LastSegment()
	a.currentPath = a.navStack[len(a.navStack)-1]
	a.navStack = a.navStack[:len(a.navStack)-1]
	a.clearMarks()
	a.refreshRows()
	a.selectByName(leavingName)
}

func (a *App) selectByName(name string) {
	a.cursor = 0
	a.offset = 0
	for i, row := range a.rows {
		if row.Name == name {
			a.cursor = i
			break
		}
	}
}

func (a *App) toggleMark() {
	if a.cursor >= len(a.rows) {
		return
	}
	p := a.rows[a.cursor].NativePath
	if a.marked[p] {
		delete(a.marked, p)
	} else {
		a.marked[p] = true
	}
	a.moveCursor(1)
}

func (a *App) clearMarks() {
	a.marked = make(map[string]bool)
}

func (a *App) markedSize() uint64 {
	var total uint64
	for _, row := range a.rows {
		if a.marked[row.NativePath] {
			total += row.Size
		}
	}
	return total
}

// refreshRows re-projects whichever source (live scan or import) is
// active into a.rows.
func (a *App) refreshRows() {
	if a.imported {
		a.refreshImportedRows()
		return
	}
	a.refreshLiveRows()
}

func (a *App) refreshLiveRows() {
	if a.sc == nil {
		return
	}
	cfg := snapshot.Config{MaxDepth: listDepth, MinSize: a.MinSize}
	snap, ok := a.sc.Snapshot(a.currentPath, cfg)
	if !ok {
		// The browsed directory vanished from the tree (e.g. deleted by
		// another process); fall back to the scan root.
		a.currentPath = a.sc.ScanPath()
		a.navStack = nil
		snap, ok = a.sc.Snapshot(a.currentPath, cfg)
		if !ok {
			return
		}
	}

	root := snap.Root()
	a.parentSize = root.Size()

	var rows []components.Row
	for i := 0; i < root.ChildrenCount(); i++ {
		child, ok := root.NthChild(i)
		if !ok {
			continue
		}
		if !a.ShowHidden && isHidden(child.Name()) {
			continue
		}
		native := a.currentPath.AppendSegment(child.Name()).SerializeNative()
		rows = append(rows, components.Row{
			Name:       child.Name(),
			Size:       child.Size(),
			IsDir:      child.IsDir(),
			NativePath: native,
		})
	}
	a.rows = rows
	a.clampCursor()
}

func (a *App) refreshImportedRows() {
	a.parentSize = a.impCurrent.Size

	var rows []components.Row
	var children []*ops.ImportedNode
	for _, child := range a.impCurrent.Children {
		if !a.ShowHidden && isHidden(child.Name) {
			continue
		}
		if child.Size < a.MinSize {
			continue
		}
		rows = append(rows, components.Row{
			Name:  child.Name,
			Size:  child.Size,
			IsDir: child.IsDir,
		})
		children = append(children, child)
	}
	a.rows = rows
	a.impChildren = children
	a.clampCursor()
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

func countImported(n *ops.ImportedNode) (files, dirs int64) {
	if !n.IsDir {
		files++
		return
	}
	dirs++
	for _, c := range n.Children {
		cf, cd := countImported(c)
		files += cf
		dirs += cd
	}
	return
}

func (a *App) closeScanner() {
	if a.sc != nil {
		a.sc.Close()
	}
}

func (a *App) scanCmd() tea.Cmd {
	return func() tea.Msg {
		b := scanner.NewBuilder().WithLogger(slog.Default())
		if a.Services != nil {
			b = b.WithServices(a.Services)
		}
		sc, err := b.Scan(a.ScanPath)
		return ScanReadyMsg{Scanner: sc, Err: err}
	}
}

func (a *App) importCmd() tea.Cmd {
	return func() tea.Msg {
		root, err := ops.ImportJSON(a.ImportPath)
		return ImportDoneMsg{Root: root, Err: err}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) prepareDelete() {
	if a.imported {
		a.statusMsg = "Delete is disabled in import mode"
		return
	}

	var items []components.ConfirmItem
	if len(a.marked) > 0 {
		for _, row := range a.rows {
			if a.marked[row.NativePath] {
				items = append(items, components.ConfirmItem{
					Name:  row.Name,
					Path:  row.NativePath,
					Size:  int64(row.Size),
					IsDir: row.IsDir,
				})
			}
		}
	} else if a.cursor < len(a.rows) {
		row := a.rows[a.cursor]
		items = append(items, components.ConfirmItem{
			Name:  row.Name,
			Path:  row.NativePath,
			Size:  int64(row.Size),
			IsDir: row.IsDir,
		})
	}

	if len(items) == 0 {
		return
	}
	a.markedItems = items
	a.state = StateConfirmDelete
}

func (a *App) executeDelete() tea.Cmd {
	items := a.markedItems
	rootNative := a.sc.ScanPath().SerializeNative()

	return func() tea.Msg {
		var deleted []string
		var errs []error

		for _, item := range items {
			if err := ops.Delete(item.Path, rootNative); err != nil {
				errs = append(errs, err)
			} else {
				deleted = append(deleted, item.Name)
			}
		}

		return DeleteDoneMsg{Deleted: deleted, Errors: errs}
	}
}

// FatalError returns a fatal scan/import error, if any.
func (a *App) FatalError() error { return a.fatalErr }

func (a *App) exportCmd() tea.Cmd {
	exportPath := a.ExportPath
	if exportPath == "" {
		exportPath = "diskmap-export.json"
	}
	version := a.Version
	a.state = StateExporting

	if a.imported {
		root := a.impRoot
		return func() tea.Msg {
			err := ops.ExportImportedJSON(root, exportPath, version)
			return ExportDoneMsg{Path: exportPath, Err: err}
		}
	}

	if a.sc == nil {
		return nil
	}
	depth := a.MaxDepth
	if depth <= 0 {
		depth = exportMaxDepth
	}
	sc := a.sc
	return func() tea.Msg {
		snap, ok := sc.Snapshot(sc.ScanPath(), snapshot.Config{MaxDepth: depth, MinSize: a.MinSize})
		if !ok {
			return ExportDoneMsg{Path: exportPath, Err: fmt.Errorf("scan root is no longer available")}
		}
		err := ops.ExportJSON(snap, exportPath, version)
		return ExportDoneMsg{Path: exportPath, Err: err}
	}
}
