package format

import (
	"fmt"
	"time"
)

// Duration renders an elapsed time compactly: "45s", "3m7s", "2h5m".
// Negative durations render as "0s".
func Duration(d time.Duration) string {
	secs := int64(d / time.Second)
	switch {
	case secs < 0:
		return "0s"
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm%ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh%dm", secs/3600, (secs%3600)/60)
	}
}
