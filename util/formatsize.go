package util

import "fmt"

// FormatSize returns a human-readable string representation of a size in bytes.
func FormatSize(size int64) string {
	units := []string{"KiB", "MiB", "GiB", "TiB"}
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	v := float64(size)
	unit := ""
	for _, u := range units {
		v /= 1024
		unit = u
		if v < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}
