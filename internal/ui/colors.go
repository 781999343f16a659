package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication, as ANSI codes so they follow the
// user's terminal palette.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Metric thresholds shared by tables, sparklines and the dashboard.
const (
	WarnPercent     = 70.0
	CriticalPercent = 90.0
)

// ThresholdColor maps a percentage to green, yellow or red.
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalPercent:
		return ColorError
	case percent >= WarnPercent:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// DisableColors switches lipgloss to plain ASCII output (for --no-color).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ConfigureColors disables colors when noColor is set or NO_COLOR is present
// in the environment.
func ConfigureColors(noColor bool) {
	if noColor || termenv.EnvNoColor() {
		DisableColors()
	}
}

// SuccessStyle, ErrorStyle, WarningStyle and MutedStyle are shortcuts for
// single-color text.
func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }
