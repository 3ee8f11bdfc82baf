package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// chromeLines is the fixed number of one-line bands App.renderBrowsing stacks
// around TreeView: header, breadcrumb, status bar.
const chromeLines = 3

// Layout derives the column/row budget for one TreeView frame from the
// terminal's reported size, so a resize (tea.WindowSizeMsg) reflows rows
// without TreeView itself tracking terminal dimensions.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentHeight returns how many TreeView rows fit below the header,
// breadcrumb, and status bar.
func (l Layout) ContentHeight() int {
	if h := l.Height - chromeLines; h > 0 {
		return h
	}
	return 1
}

// ContentWidth returns the width available for the main content area.
func (l Layout) ContentWidth() int {
	if l.Width < 20 {
		return 20
	}
	return l.Width
}

// BarWidth returns the width of each row's size-relative-to-parent bar,
// clamped so it stays legible in a narrow terminal and doesn't dominate a
// wide one.
func (l Layout) BarWidth() int {
	bar := l.ContentWidth() - l.rowOverhead()
	switch {
	case bar < 5:
		return 5
	case bar > 40:
		return 40
	default:
		return bar
	}
}

// NameWidth returns the width left for a row's name once its bar and fixed
// chrome are accounted for.
func (l Layout) NameWidth() int {
	w := l.ContentWidth() - l.rowOverhead() - l.BarWidth()
	if w < 8 {
		w = 8
	}
	return w
}

// rowOverhead is the fixed-width portion of one TreeView row — everything
// but the bar and the name.
//
// Layout: "  " mark + "99.9%" pct(6) + " [" + bar + "] " + name + " " + "  9.9 GiB" size(10)
// Fixed:    2         + 6             + 2    +     + 2    +      + 1  + 10 = 23
func (l Layout) rowOverhead() int {
	return 23 // mark(2) + pct(6) + " ["(2) + "] "(2) + " "(1) + size(10)
}

// Center centers content in the available width.
func (l Layout) Center(content string) string {
	return lipgloss.PlaceHorizontal(l.Width, lipgloss.Center, content)
}

// FullWidth pads a string with spaces to reach exactly the target visual width.
// If the string is already wider, it is returned as-is (no truncation).
func FullWidth(s string, width int) string {
	visLen := lipgloss.Width(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visLen)
}
