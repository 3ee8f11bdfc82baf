package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/diskmap/internal/ui/style"
	"github.com/sadopc/diskmap/internal/util"
)

// Row is one listed entry: a live snapshot.Node and an imported
// ops.ImportedNode both flatten down to this before reaching the view, so
// the same rendering path serves a live scan and a JSON import alike.
type Row struct {
	Name       string
	Size       uint64
	IsDir      bool
	NativePath string
}

// TreeView renders the main directory listing.
type TreeView struct {
	Theme      style.Theme
	Layout     style.Layout
	Items      []Row
	Cursor     int
	Offset     int
	Marked     map[string]bool
	ParentSize uint64
}

// Render renders the tree view.
func (tv *TreeView) Render() string {
	width := tv.Layout.ContentWidth()

	if len(tv.Items) == 0 {
		empty := lipgloss.NewStyle().Foreground(tv.Theme.TextMuted).Render("  (empty directory)")
		return style.FullWidth(empty, width)
	}

	contentHeight := tv.Layout.ContentHeight()
	barWidth := tv.Layout.BarWidth()
	nameWidth := tv.Layout.NameWidth()

	start := tv.Offset
	end := start + contentHeight
	if end > len(tv.Items) {
		end = len(tv.Items)
	}

	var lines []string
	for i := start; i < end; i++ {
		row := tv.Items[i]
		selected := i == tv.Cursor
		marked := tv.Marked[row.NativePath]
		lines = append(lines, tv.renderRow(row, selected, marked, barWidth, nameWidth, width))
	}

	for len(lines) < contentHeight {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

func (tv *TreeView) renderRow(row Row, selected, marked bool, barWidth, nameWidth, totalWidth int) string {
	size := row.Size

	pct := util.Percent(int64(size), int64(tv.ParentSize))
	pctStr := fmt.Sprintf("%5.1f%%", pct)

	ratio := pct / 100.0
	bar := tv.Theme.BarGradient(barWidth, ratio)

	name := util.Icon(row.Name, row.IsDir) + " " + row.Name
	if row.IsDir {
		name += "/"
	}
	name = util.TruncateString(name, nameWidth)

	indicator := "  "
	if selected && marked {
		indicator = tv.Theme.MarkedIndicator.Render("*") + tv.Theme.CursorIndicator.Render(">")
	} else if selected {
		indicator = tv.Theme.CursorIndicator.Render(" >")
	} else if marked {
		indicator = tv.Theme.MarkedIndicator.Render("* ")
	}

	sizeStr := util.FormatSize(int64(size))

	var nameStyled string
	if row.IsDir {
		nameStyled = tv.Theme.DirName.Render(name)
	} else {
		nameStyled = tv.Theme.FileName.Render(name)
	}

	pctStyled := tv.Theme.PercentText.Render(pctStr)
	sizeStyled := tv.Theme.SizeText.Width(10).Render(sizeStr)

	line := fmt.Sprintf("%s%s [%s] %s %s",
		indicator, pctStyled, bar, nameStyled, sizeStyled,
	)

	line = style.FullWidth(line, totalWidth)

	if selected {
		return tv.Theme.SelectedRow.Width(totalWidth).Render(line)
	}
	return line
}

// EnsureVisible adjusts offset to keep cursor visible.
func (tv *TreeView) EnsureVisible() {
	contentHeight := tv.Layout.ContentHeight()
	if tv.Cursor < tv.Offset {
		tv.Offset = tv.Cursor
	}
	if tv.Cursor >= tv.Offset+contentHeight {
		tv.Offset = tv.Cursor - contentHeight + 1
	}
	if tv.Offset < 0 {
		tv.Offset = 0
	}
}
