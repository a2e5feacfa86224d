package job

import (
	"fmt"
	"time"
)

// FormatDuration renders an elapsed time as "MM mins SS seconds", adding an
// hours component once the duration exceeds 3599 seconds.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if total > 3599 {
		return fmt.Sprintf("%d hours %02d mins %02d seconds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d mins %02d seconds", minutes, seconds)
}
