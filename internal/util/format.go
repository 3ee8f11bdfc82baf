package util

import "fmt"

// sizeUnits are the binary suffixes FormatSize scales a byte count into,
// largest first, mirroring how Snapshot.Node.Size and Scanner.Stats.UsedSize
// get rendered throughout the TUI (header, status bar, scan progress).
var sizeUnits = []struct {
	threshold float64
	suffix    string
}{
	{1 << 50, "PiB"},
	{1 << 40, "TiB"},
	{1 << 30, "GiB"},
	{1 << 20, "MiB"},
	{1 << 10, "KiB"},
}

// FormatSize renders bytes using the largest binary unit that keeps the
// scaled value at least 1, with one decimal place; below 1 KiB it reports
// the exact byte count. Negative input (never produced by the engine, but
// possible from a malformed import) renders as "0 B" rather than panicking.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	b := float64(bytes)
	for _, u := range sizeUnits {
		if b >= u.threshold {
			return fmt.Sprintf("%.1f %s", b/u.threshold, u.suffix)
		}
	}
	return fmt.Sprintf("%d B", bytes)
}

// countUnits scale a Stats.Files/Stats.Dirs tally the same way sizeUnits
// scale bytes, just decimal (K/M/B) rather than binary.
var countUnits = []struct {
	threshold float64
	suffix    string
}{
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// FormatCount renders an entry count (files, directories) compactly for
// the header and scan-progress panel.
func FormatCount(n int64) string {
	f := float64(n)
	for _, u := range countUnits {
		if f >= u.threshold {
			return fmt.Sprintf("%.1f%s", f/u.threshold, u.suffix)
		}
	}
	return fmt.Sprintf("%d", n)
}

// Percent returns part as a percentage of total, used by TreeView to size
// each row's usage bar relative to its parent directory. Reports 0 for an
// empty parent rather than dividing by zero.
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// TruncateString shortens s to at most maxLen runes, appending "..." when
// truncated and room allows, for fitting long directory names and paths
// into the terminal's fixed column widths (header path, tree rows, confirm
// dialog, scan progress).
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
