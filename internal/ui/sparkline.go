package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlockRunes are 8 vertical levels, lowest to highest.
var sparklineBlockRunes = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws the most recent width values of data on a 0-100
// scale, colored by the threshold of the last value. Percentages are plotted
// on a fixed scale so a flat 5% line does not look like a flat 95% line.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	top := len(sparklineBlockRunes) - 1
	for _, v := range data {
		level := int(v / 100 * float64(top))
		if level < 0 {
			level = 0
		} else if level > top {
			level = top
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	last := data[len(data)-1]
	return lipgloss.NewStyle().Foreground(ThresholdColor(last)).Render(sb.String())
}
