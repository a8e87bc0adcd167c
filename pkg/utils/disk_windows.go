//go:build windows

package utils

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func GetDiskInfo(path string) (*DiskInfo, error) {
	pathPtr, err := windows.UTF16PtrFromString(existingDir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to convert path: %w", err)
	}

	var available, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &available, &total, &totalFree); err != nil {
		return nil, fmt.Errorf("GetDiskFreeSpaceEx failed: %w", err)
	}
	return newDiskInfo(total, available, total-totalFree), nil
}
