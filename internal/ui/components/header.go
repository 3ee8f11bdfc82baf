package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/diskmap/internal/ui/style"
	"github.com/sadopc/diskmap/internal/util"
)

// RenderHeader renders the top header bar: program name, scan root, and
// running totals.
func RenderHeader(theme style.Theme, rootPath string, files, dirs int64, usedSize uint64, width int) string {
	if width < 10 {
		return ""
	}

	titleStyled := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(" diskmap")

	stats := fmt.Sprintf("%s items  %s ",
		util.FormatCount(files+dirs),
		util.FormatSize(int64(usedSize)),
	)
	statsStyled := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(stats)

	titleW := lipgloss.Width(titleStyled)
	statsW := lipgloss.Width(statsStyled)

	pathMaxW := width - titleW - statsW - 3
	pathStr := rootPath
	if pathMaxW > 5 {
		pathStr = util.TruncateString(pathStr, pathMaxW)
	} else {
		pathStr = ""
	}

	pathStyled := lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  " + pathStr)
	pathW := lipgloss.Width(pathStyled)

	gap := width - titleW - pathW - statsW
	if gap < 1 {
		gap = 1
	}

	line := titleStyled + pathStyled + strings.Repeat(" ", gap) + statsStyled
	return theme.HeaderStyle.Width(width).Render(line)
}

// RenderBreadcrumb renders the breadcrumb path navigation from root down
// to the currently browsed directory's path segments.
func RenderBreadcrumb(theme style.Theme, segments []string, width int) string {
	if len(segments) == 0 {
		return ""
	}

	sep := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" > ")
	var parts []string
	for i, seg := range segments {
		s := lipgloss.NewStyle().Foreground(theme.TextMuted)
		if i == len(segments)-1 {
			s = lipgloss.NewStyle().Foreground(theme.TextPrimary).Bold(true)
		}
		parts = append(parts, s.Render(seg))
	}

	breadcrumb := " " + strings.Join(parts, sep)

	if lipgloss.Width(breadcrumb) > width {
		if len(parts) > 2 {
			ellipsis := lipgloss.NewStyle().Foreground(theme.TextMuted).Render("...")
			breadcrumb = " " + ellipsis + sep + strings.Join(parts[len(parts)-2:], sep)
		}
	}

	return theme.BreadcrumbStyle.Width(width).Render(breadcrumb)
}
