package ops

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sadopc/diskmap/internal/snapshot"
)

// ncdu-compatible JSON format:
// [1, 0, {"progname":"diskmap","progver":"1.0","timestamp":1234567890},
//   [{"name":"/path","asize":123,"dsize":456},
//     {"name":"file1","asize":10,"dsize":20},
//     [{"name":"subdir","asize":30,"dsize":40},
//       {"name":"file2","asize":5,"dsize":10}
//     ]
//   ]
// ]
//
// A Snapshot carries a single size per node (internal/tree folds file
// bytes directly into directory size rather than tracking an allocated
// vs. apparent distinction), so asize and dsize are exported equal here.

type ncduHeader struct {
	Progname  string `json:"progname"`
	Progver   string `json:"progver"`
	Timestamp int64  `json:"timestamp"`
}

type ncduEntry struct {
	Name  string `json:"name"`
	Asize uint64 `json:"asize"`
	Dsize uint64 `json:"dsize,omitempty"`
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, avoiding verbose per-call
// checks in the recursive writer below.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) Write(data []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(data)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// ExportJSON exports snap to ncdu-compatible JSON format at path. For
// file targets (not "-" for stdout), it writes to a temp file first and
// atomically renames on success, so a partial file is never left behind
// on error.
func ExportJSON(snap *snapshot.Snapshot, path string, version string) (retErr error) {
	if path == "-" {
		return exportToWriter(snap, os.Stdout, version)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".diskmap-export-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := exportToWriter(snap, tmp, version); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace export file %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}

func exportToWriter(snap *snapshot.Snapshot, out io.Writer, version string) error {
	bw := bufio.NewWriterSize(out, 64*1024)
	ew := &errWriter{w: bw}

	ew.WriteString("[1, 0, ")
	if version == "" {
		version = "dev"
	}
	header := ncduHeader{
		Progname:  "diskmap",
		Progver:   version,
		Timestamp: time.Now().Unix(),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return err
	}
	_, _ = ew.Write(headerJSON)
	ew.WriteString(",\n")

	writeNode(ew, snap.Root())

	ew.WriteString("\n]\n")
	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// writeNode recursively serializes a snapshot.Node: directories become
// ncdu's "[entry, child, child, ...]" array form, files a bare entry
// object.
func writeNode(ew *errWriter, n snapshot.Node) {
	if ew.err != nil {
		return
	}

	if !n.IsDir() {
		writeEntry(ew, n)
		return
	}

	ew.WriteString("[")
	writeEntry(ew, n)
	for _, child := range n.Iter() {
		if ew.err != nil {
			return
		}
		ew.WriteString(",\n")
		writeNode(ew, child)
	}
	ew.WriteString("]")
}

func writeEntry(ew *errWriter, n snapshot.Node) {
	data, err := json.Marshal(ncduEntry{Name: n.Name(), Asize: n.Size(), Dsize: n.Size()})
	if err != nil {
		ew.err = err
		return
	}
	_, _ = ew.Write(data)
}

// ExportImportedJSON re-exports a tree previously produced by ImportJSON.
// It shares ExportJSON's atomic-write and header logic but walks an
// *ImportedNode directly, since an imported tree has no backing
// internal/tree.Tree to project a snapshot.Snapshot from.
func ExportImportedJSON(root *ImportedNode, path string, version string) (retErr error) {
	if path == "-" {
		return exportImportedToWriter(root, os.Stdout, version)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".diskmap-export-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := exportImportedToWriter(root, tmp, version); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace export file %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}

func exportImportedToWriter(root *ImportedNode, out io.Writer, version string) error {
	bw := bufio.NewWriterSize(out, 64*1024)
	ew := &errWriter{w: bw}

	ew.WriteString("[1, 0, ")
	if version == "" {
		version = "dev"
	}
	header := ncduHeader{
		Progname:  "diskmap",
		Progver:   version,
		Timestamp: time.Now().Unix(),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return err
	}
	_, _ = ew.Write(headerJSON)
	ew.WriteString(",\n")

	writeImportedNode(ew, root)

	ew.WriteString("\n]\n")
	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

func writeImportedNode(ew *errWriter, n *ImportedNode) {
	if ew.err != nil {
		return
	}

	if !n.IsDir {
		writeImportedEntry(ew, n)
		return
	}

	ew.WriteString("[")
	writeImportedEntry(ew, n)
	for _, child := range n.Children {
		if ew.err != nil {
			return
		}
		ew.WriteString(",\n")
		writeImportedNode(ew, child)
	}
	ew.WriteString("]")
}

func writeImportedEntry(ew *errWriter, n *ImportedNode) {
	data, err := json.Marshal(ncduEntry{Name: n.Name, Asize: n.Size, Dsize: n.Size})
	if err != nil {
		ew.err = err
		return
	}
	_, _ = ew.Write(data)
}
