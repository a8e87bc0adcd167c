package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiskInfo ข้อมูลพื้นที่ disk
type DiskInfo struct {
	Total       uint64 // bytes
	Free        uint64 // bytes ที่ process ใช้ได้
	Used        uint64
	UsedPercent float64
}

// existingDir เดินขึ้นไปหา directory ที่มีอยู่จริง
// local storage อาจยังไม่ได้สร้าง base path ตอน health check ครั้งแรก
func existingDir(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

func newDiskInfo(total, free, used uint64) *DiskInfo {
	info := &DiskInfo{Total: total, Free: free, Used: used}
	if total > 0 {
		info.UsedPercent = float64(used) / float64(total) * 100
	}
	return info
}

// CheckDiskSpace true เมื่อเขียนเพิ่ม requiredBytes แล้วยังเหลือพื้นที่ว่างไม่ต่ำกว่า minFreePercent
func CheckDiskSpace(path string, requiredBytes int64, minFreePercent float64) (bool, *DiskInfo, error) {
	info, err := GetDiskInfo(path)
	if err != nil {
		return false, nil, err
	}

	if int64(info.Free) < requiredBytes {
		return false, info, nil
	}
	if info.Total == 0 {
		return true, info, nil
	}

	remaining := float64(int64(info.Free)-requiredBytes) / float64(info.Total) * 100
	return remaining >= minFreePercent, info, nil
}

// FormatBytes แปลง bytes เป็น human-readable format
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// DiskSpaceError local storage พื้นที่ไม่พอ
type DiskSpaceError struct {
	Path      string
	Available uint64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space at %s: %s available", e.Path, FormatBytes(e.Available))
}
