//go:build windows

package platform

import (
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// cloudPlaceholderAttrs are the two Windows attributes spec §4.7 singles
// out: a file reported as offline or recall-on-access is a cloud
// placeholder whose data is not locally resident, so it contributes 0
// bytes to disk usage rather than its nominal size. Whether other cloud
// attributes should also zero out sizes is an open product question
// (spec §9) left unresolved here.
const cloudPlaceholderAttrs = windows.FILE_ATTRIBUTE_OFFLINE | windows.FILE_ATTRIBUTE_RECALL_ON_DATA_ACCESS

// FileSize reports the file's nominal size, unless a cloud-placeholder
// attribute is set, in which case it reports 0.
func (defaultServices) FileSize(info os.FileInfo) uint64 {
	if data, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		if data.FileAttributes&cloudPlaceholderAttrs != 0 {
			return 0
		}
	}
	return uint64(info.Size())
}
