// Package watcher abstracts the platform-specific source of filesystem
// change events the scanner consumes. A Watcher only ever needs to map a
// raw OS event to the directory it happened in — recursion and task
// scheduling are the scanner's job.
package watcher

import "errors"

// ErrUnavailable is returned by Add when the backend cannot register any
// more paths (ring-buffer exhaustion, permission error, inotify watch
// limit, ...). Per spec §4.6/§7, a watcher failure demotes the watcher to
// a no-op for subsequent registrations; it never aborts the scanner.
var ErrUnavailable = errors.New("watcher: backend unavailable")

// Event reports that the directory at UpdatedPath changed in some way
// the scanner should re-examine. Individual file-level events are
// coalesced by the backend into one event per affected parent directory.
type Event struct {
	UpdatedPath string
}

// Watcher is the capability surface the scanner consumes.
type Watcher interface {
	// Add registers path for change notifications. Idempotent: adding an
	// already-registered path is a no-op success.
	Add(path string) error
	// ReadEvents drains and returns all currently buffered events without
	// blocking. A nil or empty slice means "nothing pending right now".
	ReadEvents() []Event
	// Close releases all registrations and backend resources.
	Close() error
}
