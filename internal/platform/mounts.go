package platform

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// supportedFSTypes is the allowlist of filesystem types worth offering as
// scan roots, per spec §4.7. Pseudo-filesystems (proc, sysfs, tmpfs,
// overlay, devfs, ...) are deliberately absent.
var supportedFSTypes = map[string]bool{
	// Unix-like
	"ext2": true, "ext3": true, "ext4": true,
	"xfs": true, "btrfs": true, "zfs": true,
	"vfat": true, "exfat": true, "ntfs": true, "fuseblk": true,
	"apfs": true, "hfs": true, "hfsplus": true,
	// Windows (reported fstype strings from gopsutil)
	"NTFS": true, "FAT32": true, "exFAT": true, "ReFS": true,
}

func (defaultServices) AvailableMounts() ([]string, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}
	var mounts []string
	for _, p := range partitions {
		if !supportedFSTypes[p.Fstype] {
			continue
		}
		mounts = append(mounts, p.Mountpoint)
	}
	return mounts, nil
}

func (defaultServices) ExcludedPaths() ([]string, error) {
	partitions, err := disk.Partitions(true)
	if err != nil {
		return nil, err
	}
	var excluded []string
	for _, p := range partitions {
		if supportedFSTypes[p.Fstype] {
			continue
		}
		excluded = append(excluded, p.Mountpoint)
	}
	if runtime.GOOS != "windows" {
		excluded = append(excluded, "/proc", "/sys", "/dev")
	}
	return excluded, nil
}

func (defaultServices) MountStats(path string) (MountStats, bool) {
	usage, err := disk.Usage(path)
	if err != nil {
		return MountStats{}, false
	}
	isMount := false
	if partitions, perr := disk.Partitions(false); perr == nil {
		for _, p := range partitions {
			if p.Mountpoint == path {
				isMount = true
				break
			}
		}
	}
	return MountStats{
		TotalBytes:     usage.Total,
		AvailableBytes: usage.Free,
		IsMountPoint:   isMount,
	}, true
}

func (defaultServices) UsedMemory() (uint64, bool) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, false
	}
	return v.Used, true
}
