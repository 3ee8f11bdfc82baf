package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/diskmap/internal/ops"
	"github.com/sadopc/diskmap/internal/platform"
	"github.com/sadopc/diskmap/internal/scanner"
	"github.com/sadopc/diskmap/internal/snapshot"
	"github.com/sadopc/diskmap/internal/ui"
)

var version = "dev"

func main() {
	exportPath := flag.String("export", "", "Export scan results to JSON file (headless mode, use '-' for stdout)")
	importPath := flag.String("import", "", "Import and view scan results from JSON file")
	showHidden := flag.Bool("hidden", true, "Show hidden files")
	noHidden := flag.Bool("no-hidden", false, "Hide hidden files")
	showVersion := flag.Bool("version", false, "Show version")
	exclude := flag.String("exclude", "", "Comma-separated list of absolute paths to exclude from scanning")
	maxDepth := flag.Int("max-depth", 0, "Maximum snapshot depth for export (0 = 1000 levels)")
	minSize := flag.String("min-size", "", "Hide entries smaller than this size (e.g. 1M, 512K)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "diskmap - Interactive disk usage analyzer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: diskmap [options] [path]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  diskmap .                       Scan current directory\n")
		fmt.Fprintf(os.Stderr, "  diskmap /home                   Scan /home\n")
		fmt.Fprintf(os.Stderr, "  diskmap --export scan.json .    Export scan to JSON\n")
		fmt.Fprintf(os.Stderr, "  diskmap --import scan.json      View exported scan\n")
		fmt.Fprintf(os.Stderr, "  diskmap --min-size 10M /home    Hide entries smaller than 10MiB\n")
	}

	flag.Parse()

	hiddenSet, noHiddenSet := false, false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "hidden" {
			hiddenSet = true
		}
		if f.Name == "no-hidden" {
			noHiddenSet = true
		}
	})
	if hiddenSet && noHiddenSet {
		fmt.Fprintf(os.Stderr, "Error: --hidden and --no-hidden cannot be used together\n")
		os.Exit(1)
	}

	if *showVersion {
		fmt.Printf("diskmap %s\n", version)
		os.Exit(0)
	}

	minSizeBytes, err := parseSize(*minSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	hidden := *showHidden
	if *noHidden {
		hidden = false
	}

	if *importPath != "" {
		if flag.NArg() > 0 {
			fmt.Fprintf(os.Stderr, "Error: --import cannot be used with a scan path\n")
			os.Exit(1)
		}
		runImport(*importPath, *exportPath, hidden, *maxDepth, minSizeBytes)
		return
	}

	scanPath := "."
	switch flag.NArg() {
	case 0:
	case 1:
		scanPath = flag.Arg(0)
	default:
		fmt.Fprintf(os.Stderr, "Error: too many positional arguments\n")
		os.Exit(1)
	}

	absPath, err := filepath.Abs(scanPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", absPath)
		os.Exit(1)
	}

	services := platform.Default()
	if *exclude != "" {
		services = withExtraExclusions(services, splitComma(*exclude))
	}

	if *exportPath != "" {
		runHeadlessExport(absPath, *exportPath, services, *maxDepth, minSizeBytes)
		return
	}

	app := ui.NewApp(absPath)
	app.ExportPath = "diskmap-export.json"
	app.Version = version
	app.MaxDepth = *maxDepth
	app.MinSize = minSizeBytes
	app.ShowHidden = hidden
	if *exclude != "" {
		app.Services = services
	}

	runProgram(app)
}

// runHeadlessExport scans absPath to completion, then exports the tree,
// filtered by maxDepth (0 means a depth of 1000) and minSize, as a single
// JSON document without ever starting the TUI.
func runHeadlessExport(absPath, exportPath string, services platform.Services, maxDepth int, minSize uint64) {
	if exportPath != "-" {
		fmt.Printf("Scanning %s...\n", absPath)
	}

	sc, err := scanner.NewBuilder().WithServices(services).Scan(absPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan error: %v\n", err)
		os.Exit(1)
	}
	defer sc.Close()

	// The worker runs in the background; headless export waits for the
	// initial recursive walk to finish before projecting a snapshot.
	for sc.IsScanning() {
		time.Sleep(10 * time.Millisecond)
	}

	depth := maxDepth
	if depth <= 0 {
		depth = 1000
	}
	snap, ok := sc.Snapshot(sc.ScanPath(), snapshot.Config{MaxDepth: depth, MinSize: minSize})
	if !ok {
		fmt.Fprintf(os.Stderr, "Scan error: root is no longer available\n")
		os.Exit(1)
	}

	if err := ops.ExportJSON(snap, exportPath, version); err != nil {
		fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
		os.Exit(1)
	}
	if exportPath != "-" {
		fmt.Printf("Exported to %s\n", exportPath)
	}
}

func runImport(importPath, exportPath string, hidden bool, maxDepth int, minSize uint64) {
	if exportPath != "" {
		root, err := ops.ImportJSON(importPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
			os.Exit(1)
		}
		if err := ops.ExportImportedJSON(root, exportPath, version); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		if exportPath != "-" {
			fmt.Printf("Exported to %s\n", exportPath)
		}
		return
	}

	app := ui.NewAppFromImport(importPath)
	app.Version = version
	app.MaxDepth = maxDepth
	app.MinSize = minSize
	app.ShowHidden = hidden

	runProgram(app)
}

func runProgram(app *ui.App) {
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := app.FatalError(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withExtraExclusions decorates services so ExcludedPaths additionally
// reports user-specified absolute paths, leaving every other Services
// method untouched.
type exclusionDecorator struct {
	platform.Services
	extra []string
}

func (d exclusionDecorator) ExcludedPaths() ([]string, error) {
	base, err := d.Services.ExcludedPaths()
	if err != nil {
		return nil, err
	}
	return append(base, d.extra...), nil
}

func withExtraExclusions(s platform.Services, extra []string) platform.Services {
	abs := make([]string, 0, len(extra))
	for _, p := range extra {
		if a, err := filepath.Abs(p); err == nil {
			abs = append(abs, a)
		}
	}
	return exclusionDecorator{Services: s, extra: abs}
}

func splitComma(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseSize parses sizes like "10M", "512K", "1G", or a bare byte count.
func parseSize(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	s = strings.TrimSpace(s)
	multiplier := uint64(1)
	suffix := s[len(s)-1]
	switch suffix {
	case 'k', 'K':
		multiplier = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		multiplier = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --min-size %q: %w", s, err)
	}
	return n * multiplier, nil
}
