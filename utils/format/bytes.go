package format

import "fmt"

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// HumanReadableSize 按 1024 进制换算，保留两位小数；小于 1KB 时原样输出
func HumanReadableSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}

	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, units[unit])
}
