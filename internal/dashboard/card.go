package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/server-sentinel/sentinel/internal/ui"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// Card layout constants
const (
	cardLabelWidth  = 5
	cardMinBarWidth = 8
	cardHistory     = 20
)

// truncateWithEllipsis truncates a string to maxLen runes, adding ellipsis if needed.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}

// padLine pads content with spaces to width so every card line lines up.
func padLine(content string, width int) string {
	w := lipgloss.Width(content)
	if width > w {
		return content + strings.Repeat(" ", width-w)
	}
	return content
}

// renderCard renders a single server card.
func (m Model) renderCard(s sdk.Server, width int, selected bool) string {
	style := m.styles.Card.Width(width)
	if selected {
		style = m.styles.CardSelected.Width(width)
	}

	// Inner width for content (account for card padding)
	innerWidth := width - 4
	report, hasReport := m.session.Report(s.Name)

	var lines []string
	lines = append(lines, padLine(m.renderServerLine(s.Name, report, hasReport), innerWidth))
	lines = append(lines, padLine(m.styles.Muted.Render(truncateWithEllipsis(s.User+"@"+s.Address(), innerWidth)), innerWidth))
	lines = append(lines, m.styles.Divider(innerWidth))

	statusStyle := m.styles.Label
	if m.inCurrentRun(s.Name) {
		statusStyle = m.styles.StatusRunning
	}
	lines = append(lines, padLine(statusStyle.Render(truncateWithEllipsis(m.statusLabel(s.Name), innerWidth)), innerWidth))

	switch {
	case !hasReport:
		lines = append(lines, padLine(m.styles.Muted.Render("No data yet"), innerWidth))
	case !report.IsOnline:
		msg := "Offline"
		if report.Error != "" {
			msg = "Offline: " + report.Error
		}
		lines = append(lines, padLine(m.styles.StatusOffline.Render(truncateWithEllipsis(msg, innerWidth)), innerWidth))
	default:
		lines = append(lines, m.renderCardMetric("CPU", report.CPUUsage, innerWidth))
		if report.MemTotalMB > 0 {
			lines = append(lines, m.renderCardMetric("MEM", report.MemUsedPercent(), innerWidth))
		}
		if report.SwapTotalMB > 0 {
			lines = append(lines, m.renderCardMetric("SWAP", report.SwapUsedPercent(), innerWidth))
		}
		if spark := ui.RenderSparkline(m.session.History.CPU(s.Name, cardHistory), innerWidth-cardLabelWidth-1); spark != "" {
			lines = append(lines, padLine(m.styles.Label.Render(fmt.Sprintf("%-*s", cardLabelWidth, "hist"))+" "+spark, innerWidth))
		}
	}

	return style.Render(strings.Join(lines, "\n"))
}

// renderServerLine renders the mark box, name and online indicator.
func (m Model) renderServerLine(name string, report sdk.ServerReport, hasReport bool) string {
	mark := m.styles.Muted.Render(GlyphUnmark)
	if m.marked[name] {
		mark = m.styles.Title.Render(GlyphMarked)
	}

	var indicator string
	switch {
	case !hasReport:
		indicator = m.styles.StatusPending.Render(GlyphPending)
	case report.IsOnline:
		indicator = m.styles.StatusOnline.Render(GlyphOnline)
	default:
		indicator = m.styles.StatusOffline.Render(GlyphOffline)
	}

	return mark + " " + m.styles.ServerName.Render(name) + " " + indicator
}

// renderCardMetric renders "CPU  ▰▰▰▱▱▱  42.0%".
func (m Model) renderCardMetric(label string, percent float64, width int) string {
	pct := ui.FormatPercent(percent)
	barWidth := width - cardLabelWidth - 1 - len(pct) - 1
	if barWidth < cardMinBarWidth {
		barWidth = cardMinBarWidth
	}
	line := m.styles.Label.Render(fmt.Sprintf("%-*s", cardLabelWidth, label)) + " " +
		m.styles.ProgressBar(barWidth, percent) + " " +
		m.styles.MetricStyle(percent).Render(pct)
	return padLine(line, width)
}
