package display

import (
	"fmt"
	"time"
)

var byteUnits = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytes returns a human-readable size (B, KiB, MiB, ...).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	v := float64(bytes) / unit
	exp := 0
	for v >= unit && exp < len(byteUnits)-1 {
		v /= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[exp])
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 MiB").
func FormatBytesWithSign(bytes int64) string {
	switch {
	case bytes > 0:
		return "+ " + FormatBytes(bytes)
	case bytes < 0:
		return "- " + FormatBytes(-bytes)
	}
	return FormatBytes(0)
}

// FormatBitrateLabel returns a short label for bitrate in kbps (e.g. "1200 kbps").
func FormatBitrateLabel(kbps int64) string {
	if kbps <= 0 {
		return "unknown"
	}
	if kbps < 1000 {
		return fmt.Sprintf("%d kbps", kbps)
	}
	return fmt.Sprintf("%.1f Mbps", float64(kbps)/1000)
}

// FormatDuration rounds d for per-step timings: milliseconds under a
// second, whole seconds above.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
