package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/diskmap/internal/scanner"
	"github.com/sadopc/diskmap/internal/ui/style"
	"github.com/sadopc/diskmap/internal/util"
)

// RenderScanProgress renders the scanning progress overlay.
func RenderScanProgress(theme style.Theme, stats scanner.Stats, currentPath string, width, height int) string {
	boxWidth := 50
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Render("  Scanning...")

	lines = append(lines, title)
	lines = append(lines, "")

	filesLine := fmt.Sprintf("  Files:  %s", util.FormatCount(stats.Files))
	dirsLine := fmt.Sprintf("  Dirs:   %s", util.FormatCount(stats.Dirs))
	sizeLine := fmt.Sprintf("  Size:   %s", util.FormatSize(int64(stats.UsedSize)))

	statStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary)
	lines = append(lines, statStyle.Render(filesLine))
	lines = append(lines, statStyle.Render(dirsLine))
	lines = append(lines, statStyle.Render(sizeLine))

	if currentPath != "" {
		pathLine := fmt.Sprintf("  At:     %s", util.TruncateString(currentPath, boxWidth-10))
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(pathLine))
	}

	lines = append(lines, "")

	elapsed := fmt.Sprintf("  Elapsed: %.1fs", stats.ScanDuration.Seconds())
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(elapsed))

	content := strings.Join(lines, "\n")

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
