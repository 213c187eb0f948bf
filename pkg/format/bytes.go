// Package format renders sizes, durations and usage meters for terminal output.
package format

import "fmt"

const unit = 1024

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// Bytes converts a byte count to a human-readable string using binary
// multiples and one decimal place, e.g. "512.0B", "1.5KB", "3.2GB".
// Values of 1024 TB and above are expressed in PB. Negative counts render as "0B".
func Bytes(b int64) string {
	if b < 0 {
		return "0B"
	}
	return scaled(float64(b))
}

// Ubytes is Bytes for unsigned counters as reported by the metrics provider.
func Ubytes(b uint64) string {
	return scaled(float64(b))
}

func scaled(v float64) string {
	for _, u := range byteUnits {
		if v < unit {
			return fmt.Sprintf("%.1f%s", v, u)
		}
		v /= unit
	}
	return fmt.Sprintf("%.1fPB", v)
}
