package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/diskmap/internal/ui/style"
	"github.com/sadopc/diskmap/internal/util"
)

// ConfirmItem is one row.NativePath staged for deletion — either the
// single row under the cursor or every currently-marked row, built by
// App.prepareDelete. Import mode never builds one: deletion is disabled
// there.
type ConfirmItem struct {
	Name  string
	Path  string // NativePath, passed straight through to ops.Delete.
	Size  int64
	IsDir bool
}

// maxConfirmRows caps how many staged items the dialog lists individually
// before collapsing the rest into a "... and N more" line — deleting a
// directory with thousands of marked children shouldn't grow the modal
// past the terminal.
const maxConfirmRows = 10

// RenderConfirmDialog renders the deletion confirmation modal for items
// staged by App.prepareDelete.
func RenderConfirmDialog(theme style.Theme, items []ConfirmItem, width, height int) string {
	boxWidth := 60
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	var lines []string

	lines = append(lines, theme.ModalTitle.Render("  Delete Confirmation"))

	warning := lipgloss.NewStyle().
		Foreground(theme.Warning).
		Render(fmt.Sprintf("  The following %d item(s) will be permanently deleted:", len(items)))
	lines = append(lines, warning, "")

	shown := len(items)
	if shown > maxConfirmRows {
		shown = maxConfirmRows
	}

	var totalSize int64
	for _, item := range items {
		totalSize += item.Size
	}

	for _, item := range items[:shown] {
		icon := "  F "
		if item.IsDir {
			icon = "  D "
		}
		name := util.TruncateString(item.Name, boxWidth-20)
		size := util.FormatSize(item.Size)
		line := lipgloss.NewStyle().Foreground(theme.Error).Render(icon+name) +
			lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  "+size)
		lines = append(lines, line)
	}

	if len(items) > shown {
		more := fmt.Sprintf("  ... and %d more", len(items)-shown)
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(more))
	}

	totalLine := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.TextPrimary).
		Render(fmt.Sprintf("  Total: %s", util.FormatSize(totalSize)))
	lines = append(lines, "", totalLine, "")

	prompt := lipgloss.NewStyle().
		Foreground(theme.TextPrimary).
		Render("  Press ") +
		lipgloss.NewStyle().Bold(true).Foreground(theme.Success).Render("y") +
		lipgloss.NewStyle().Foreground(theme.TextPrimary).Render(" to confirm, ") +
		lipgloss.NewStyle().Bold(true).Foreground(theme.Error).Render("n/esc") +
		lipgloss.NewStyle().Foreground(theme.TextPrimary).Render(" to cancel")
	lines = append(lines, prompt)

	content := strings.Join(lines, "\n")

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
