package ops

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// ImportedNode is a detached, browsable tree built by ImportJSON: unlike
// a snapshot.Snapshot (which only ever projects a live internal/tree.Tree
// under its arena), an imported tree has no corresponding live Tree to
// project from, so it gets its own minimal representation here.
type ImportedNode struct {
	Name     string
	Size     uint64
	IsDir    bool
	Parent   *ImportedNode
	Children []*ImportedNode
}

// validateName rejects names that could escape the directory tree.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty entry name")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid entry name: %q", name)
	}
	if strings.ContainsRune(name, '/') {
		return fmt.Errorf("entry name contains path separator: %q", name)
	}
	if runtime.GOOS == "windows" && strings.ContainsRune(name, '\\') {
		return fmt.Errorf("entry name contains path separator: %q", name)
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("entry name is not a simple filename: %q", name)
	}
	return nil
}

// ImportJSON imports a tree from ncdu-compatible JSON format at path.
func ImportJSON(path string) (*ImportedNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}
	defer f.Close()

	// Parse the top-level array: [version, minor, header, rootDir]
	var raw []json.RawMessage
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	// Reject trailing non-whitespace input.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid JSON: trailing data after top-level array")
		}
		return nil, fmt.Errorf("invalid JSON: trailing data after top-level array: %w", err)
	}

	if len(raw) < 4 {
		return nil, fmt.Errorf("invalid ncdu format: expected at least 4 elements, got %d", len(raw))
	}

	// raw[3] is the root directory array.
	root, err := parseDir(raw[3], nil, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot parse root directory: %w", err)
	}
	return root, nil
}

const maxImportDepth = 1000

func parseDir(data json.RawMessage, parent *ImportedNode, depth int) (*ImportedNode, error) {
	if depth > maxImportDepth {
		return nil, fmt.Errorf("directory nesting exceeds maximum depth of %d", maxImportDepth)
	}

	// A directory is an array: [{dir_entry}, child1, child2, ...]
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("directory is not an array: %w", err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("empty directory array")
	}

	var entry ncduEntry
	if err := json.Unmarshal(elements[0], &entry); err != nil {
		return nil, fmt.Errorf("cannot parse directory entry: %w", err)
	}

	// Root entry (parent==nil) uses an absolute path per ncdu convention;
	// non-root entries must be simple filenames.
	if parent != nil {
		if err := validateName(entry.Name); err != nil {
			return nil, fmt.Errorf("invalid directory entry: %w", err)
		}
	} else {
		entry.Name = filepath.Clean(entry.Name)
	}

	dir := &ImportedNode{Name: entry.Name, IsDir: true, Parent: parent}

	for i := 1; i < len(elements); i++ {
		child := elements[i]

		trimmed := trimLeadingWhitespace(child)
		if len(trimmed) == 0 {
			continue
		}

		switch trimmed[0] {
		case '[':
			subDir, err := parseDir(child, dir, depth+1)
			if err != nil {
				return nil, err
			}
			dir.Children = append(dir.Children, subDir)
		case '{':
			var fileEntry ncduEntry
			if err := json.Unmarshal(child, &fileEntry); err != nil {
				return nil, fmt.Errorf("cannot parse file entry: %w", err)
			}
			if err := validateName(fileEntry.Name); err != nil {
				return nil, fmt.Errorf("invalid file entry: %w", err)
			}
			dir.Children = append(dir.Children, &ImportedNode{
				Name:   fileEntry.Name,
				Size:   fileEntry.Asize,
				Parent: dir,
			})
		default:
			return nil, fmt.Errorf("unexpected child element at index %d: expected array or object", i)
		}
	}

	sortImportedChildren(dir.Children)

	var total uint64
	for _, c := range dir.Children {
		total += c.Size
	}
	dir.Size = total

	return dir, nil
}

// sortImportedChildren orders children by (-size, name), matching the
// sort order internal/tree and internal/snapshot both maintain, so an
// imported tree browses identically to a freshly scanned one.
func sortImportedChildren(children []*ImportedNode) {
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].Size != children[j].Size {
			return children[i].Size > children[j].Size
		}
		return natural.Less(children[i].Name, children[j].Name)
	})
}

func trimLeadingWhitespace(data []byte) []byte {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return data[i:]
		}
	}
	return nil
}
