//go:build !windows

package platform

import (
	"os"
	"syscall"
)

// FileSize reports POSIX allocation size: blocks * 512, falling back to
// the apparent size if the platform stat is unavailable (e.g. over some
// network filesystems), per spec §4.7.
func (defaultServices) FileSize(info os.FileInfo) uint64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return uint64(info.Size())
	}
	return uint64(stat.Blocks) * 512
}
