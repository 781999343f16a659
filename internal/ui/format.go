package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatMB renders a megabyte count in binary units, e.g. "1.5 GiB".
func FormatMB(mb int) string {
	if mb <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(mb) * 1024 * 1024)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatAgo renders t relative to now, e.g. "3 seconds ago". The zero time
// renders as "never".
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatDuration renders a duration as seconds with one decimal.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
