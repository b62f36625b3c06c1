package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count in the largest fitting unit, rounded
// to two decimals with trailing zeros trimmed: 0 -> "0 B", 1536 -> "1.5 KB".
func FormatBytes(n uint64) string {
	if n == 0 {
		return "0 B"
	}
	exp := int(math.Log(float64(n)) / math.Log(1024))
	if exp >= len(byteUnits) {
		exp = len(byteUnits) - 1
	}
	value := float64(n) / math.Pow(1024, float64(exp))
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[exp]
}

// FormatDuration renders a duration as a compact human string, largest
// two units only: "2d 5h 10m", "1h 3m", "5m 12s", "42s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours%24, minutes%60)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
