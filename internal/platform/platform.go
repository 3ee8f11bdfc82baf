// Package platform isolates the OS-specific probes the core engine
// depends on: mount enumeration, free-space queries, on-disk file size,
// process memory, and path deletion. Exactly one implementation exists
// per supported OS behind the Services interface (spec §4.7); the
// scanner and UI only ever see Services.
package platform

import "os"

// MountStats reports free-space and identity information for one mount
// point, mirroring spec §4.7's Option<{total_bytes, available_bytes,
// is_mount_point}>.
type MountStats struct {
	TotalBytes     uint64
	AvailableBytes uint64
	IsMountPoint   bool
}

// Services is the narrow platform boundary the core consumes. A backend
// that cannot answer a given probe returns ok=false (for MountStats) or a
// zero value (for UsedMemory) rather than an error — these are
// self-diagnostics, not core operations, per spec §4.7/§6.
type Services interface {
	// AvailableMounts lists native-path filesystems worth offering the
	// user as scan roots, filtered to a known-supported set.
	AvailableMounts() ([]string, error)
	// ExcludedPaths lists paths to skip during traversal — typically
	// pseudo-filesystems and mounts not under the current scan root.
	ExcludedPaths() ([]string, error)
	// MountStats reports free-space info for path, or ok=false if it
	// cannot be determined.
	MountStats(path string) (stats MountStats, ok bool)
	// FileSize returns the on-disk size platform reports for info: POSIX
	// blocks*512, or the Windows file size unless a cloud-placeholder
	// attribute indicates the data is not locally resident (then 0).
	FileSize(info os.FileInfo) uint64
	// UsedMemory is an optional self-diagnostic.
	UsedMemory() (bytes uint64, ok bool)
	// DeletePath removes path: recursively for directories, a single
	// file otherwise. Returns false on any failure.
	DeletePath(path string) bool
}

// Default returns the Services implementation for the running OS.
func Default() Services {
	return defaultServices{}
}

type defaultServices struct{}

// DeletePath is identical across platforms: os.RemoveAll subsumes
// os.Remove for the single-file case.
func (defaultServices) DeletePath(path string) bool {
	return os.RemoveAll(path) == nil
}
