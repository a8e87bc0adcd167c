//go:build !windows

package utils

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// GetDiskInfo พื้นที่ของ filesystem ที่ path อยู่ (Free = ส่วนที่ user ธรรมดาใช้ได้)
func GetDiskInfo(path string) (*DiskInfo, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(existingDir(path), &stat); err != nil {
		return nil, fmt.Errorf("statfs failed: %w", err)
	}

	bsize := uint64(stat.Bsize)
	total := stat.Blocks * bsize
	return newDiskInfo(total, stat.Bavail*bsize, total-stat.Bfree*bsize), nil
}
