// Package pathkey implements an immutable, ordered path representation
// with a partial order by ancestor relation and a cheap content-addressed
// fingerprint, used by internal/tree to index and compare directory paths
// without touching the filesystem.
package pathkey

import (
	"path/filepath"
)

// Order is the result of comparing two PathKeys.
type Order int

const (
	// Incomparable means neither path is an ancestor of the other.
	Incomparable Order = iota
	Equal
	Less    // a is a strict ancestor of b
	Greater // b is a strict ancestor of a
)

// PathKey is a non-empty ordered sequence of path segments. The first
// segment is the scan root and is not required to be "/"; it is treated
// as an opaque string like any other segment.
type PathKey struct {
	segments []string
	fp       Fingerprint
}

// New builds a PathKey from an ordered, non-empty list of segments. The
// slice is copied so the returned PathKey is immutable.
func New(segments ...string) PathKey {
	if len(segments) == 0 {
		panic("pathkey: New requires at least one segment")
	}
	cp := append([]string(nil), segments...)
	return PathKey{segments: cp, fp: fingerprintOf(cp)}
}

// FromNative builds a single-segment root PathKey from a native scan-root
// path. filepath.Clean strips a trailing separator, so "/data/mnt" and
// "/data/mnt/" produce identical PathKeys (and identical fingerprints),
// per spec: trailing-separator roots must share tree identity with their
// unadorned form. Directories discovered under the root are added one at
// a time with AppendSegment, never by splitting a native path further.
func FromNative(native string) PathKey {
	clean := filepath.Clean(native)
	return New(clean)
}

// Segments returns the ordered segment list. Callers must not mutate it.
func (p PathKey) Segments() []string { return p.segments }

// SegmentCount returns the number of segments.
func (p PathKey) SegmentCount() int { return len(p.segments) }

// LastSegment returns the final segment (the node's own name).
func (p PathKey) LastSegment() string { return p.segments[len(p.segments)-1] }

// Fingerprint returns the cached content-addressed fingerprint.
func (p PathKey) Fingerprint() Fingerprint { return p.fp }

// AppendSegment returns a new PathKey with name appended.
func (p PathKey) AppendSegment(name string) PathKey {
	segs := append(append([]string(nil), p.segments...), name)
	return PathKey{segments: segs, fp: p.fp.Child(name)}
}

// DropLast returns a new PathKey with the final segment removed, and
// false if p has only one segment (the root has no parent).
func (p PathKey) DropLast() (PathKey, bool) {
	if len(p.segments) <= 1 {
		return PathKey{}, false
	}
	segs := p.segments[:len(p.segments)-1]
	return New(segs...), true
}

// Compare returns the partial order of a relative to b.
func Compare(a, b PathKey) Order {
	la, lb := len(a.segments), len(b.segments)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		if a.segments[i] != b.segments[i] {
			return Incomparable
		}
	}
	switch {
	case la == lb:
		return Equal
	case la < lb:
		return Less
	default:
		return Greater
	}
}

// LessOrEqual reports whether a is an ancestor of or equal to b.
func LessOrEqual(a, b PathKey) bool {
	ord := Compare(a, b)
	return ord == Equal || ord == Less
}

// SerializeNative renders p back into a native filesystem path.
func (p PathKey) SerializeNative() string {
	if len(p.segments) == 1 {
		return p.segments[0]
	}
	return filepath.Join(p.segments...)
}

// String implements fmt.Stringer for debugging/logging.
func (p PathKey) String() string { return p.SerializeNative() }
