package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/server-sentinel/sentinel/internal/ui"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// NoDataYet is shown in the detail view of a server without a report.
const NoDataYet = "No data yet — run a check"

const detailHistory = 30

// renderDetailContent renders the scrollable body of the detail view. It
// re-reads the directory, store and projector every time.
func (m Model) renderDetailContent() string {
	name := m.nav.Server
	s, ok := m.session.Directory.Get(name)
	if !ok {
		return m.styles.Label.Render("No server selected")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(s))
	b.WriteString("\n\n")
	b.WriteString(m.renderIdentitySection(s, contentWidth))
	b.WriteString("\n")

	report, ok := m.session.Report(name)
	if !ok {
		b.WriteString(m.styles.Section.Width(contentWidth).Render(m.styles.Label.Render(NoDataYet)))
		return b.String()
	}

	if !report.IsOnline {
		lines := []string{m.styles.SectionTitle.Render("Report"), ""}
		lines = append(lines, m.styles.StatusOffline.Render("  Offline"))
		if report.Error != "" {
			lines = append(lines, m.styles.Label.Render("  "+report.Error))
		}
		lines = append(lines, m.styles.Muted.Render("  Checked "+report.Timestamp))
		b.WriteString(m.styles.Section.Width(contentWidth).Render(strings.Join(lines, "\n")))
		return b.String()
	}

	b.WriteString(m.renderCPUSection(name, report, contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderMemorySection(name, report, contentWidth))
	b.WriteString("\n")
	if report.TopProcesses != "" {
		b.WriteString(m.renderProcessesSection(report, contentWidth))
	}
	return b.String()
}

// renderDetailHeader renders the server name, online state and current status label.
func (m Model) renderDetailHeader(s sdk.Server) string {
	report, ok := m.session.Report(s.Name)
	var indicator string
	switch {
	case !ok:
		indicator = m.styles.StatusPending.Render(GlyphPending + " No report")
	case report.IsOnline:
		indicator = m.styles.StatusOnline.Render(GlyphOnline + " Online")
	default:
		indicator = m.styles.StatusOffline.Render(GlyphOffline + " Offline")
	}

	status := m.styles.Label
	if m.inCurrentRun(s.Name) {
		status = m.styles.StatusRunning
	}

	return fmt.Sprintf("%s  %s  %s",
		m.styles.Title.Render(s.Name),
		indicator,
		status.Render(m.statusLabel(s.Name)))
}

func (m Model) renderIdentitySection(s sdk.Server, width int) string {
	lines := []string{
		m.styles.SectionTitle.Render("Server"),
		"",
		m.detailRow("Address", s.Address()),
		m.detailRow("User", s.User),
	}
	if s.Port > 0 {
		lines = append(lines, m.detailRow("Port", strconv.Itoa(s.Port)))
	}
	return m.styles.Section.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCPUSection(name string, r sdk.ServerReport, width int) string {
	lines := []string{m.styles.SectionTitle.Render("CPU"), ""}
	lines = append(lines, m.usageLine(r.CPUUsage, width))

	if history := m.session.History.CPU(name, detailHistory); len(history) > 0 {
		lines = append(lines, "")
		lines = append(lines, "  "+ui.RenderSparkline(history, width-6))
		lines = append(lines, m.styles.Label.Render(fmt.Sprintf("  History (%d pulls)", len(history))))
	}
	return m.styles.Section.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderMemorySection(name string, r sdk.ServerReport, width int) string {
	lines := []string{m.styles.SectionTitle.Render("Memory"), ""}

	if r.MemTotalMB > 0 {
		lines = append(lines, m.usageLine(r.MemUsedPercent(), width))
		lines = append(lines,
			m.detailRow("Used", ui.FormatMB(r.MemUsedMB)),
			m.detailRow("Free", ui.FormatMB(r.MemFreeMB)),
			m.detailRow("Total", ui.FormatMB(r.MemTotalMB)),
		)
		if history := m.session.History.Memory(name, detailHistory); len(history) > 1 {
			lines = append(lines, "  "+ui.RenderSparkline(history, width-6))
		}
	} else {
		lines = append(lines, m.styles.Muted.Render("  Not reported"))
	}

	lines = append(lines, "")
	if r.SwapTotalMB > 0 {
		lines = append(lines,
			m.styles.Label.Render("  Swap"),
			m.usageLine(r.SwapUsedPercent(), width),
			m.detailRow("Used", ui.FormatMB(r.SwapUsedMB)),
			m.detailRow("Free", ui.FormatMB(r.SwapFreeMB())),
			m.detailRow("Total", ui.FormatMB(r.SwapTotalMB)),
		)
	} else {
		lines = append(lines, m.styles.Muted.Render("  No swap configured"))
	}

	if r.CacheCleared {
		lines = append(lines, "", m.styles.StatusOnline.Render("  "+ui.SymbolSuccess+" Page cache cleared during check"))
	}
	if r.Timestamp != "" {
		lines = append(lines, m.styles.Muted.Render("  Checked "+r.Timestamp))
	}
	return m.styles.Section.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderProcessesSection(r sdk.ServerReport, width int) string {
	lines := []string{m.styles.SectionTitle.Render("Top processes"), ""}
	for _, l := range strings.Split(strings.TrimRight(r.TopProcesses, "\n"), "\n") {
		lines = append(lines, m.styles.Value.Render("  "+truncateWithEllipsis(l, width-6)))
	}
	return m.styles.Section.Width(width).Render(strings.Join(lines, "\n"))
}

// usageLine renders "  Usage: ▰▰▰▱▱▱  42.0%".
func (m Model) usageLine(percent float64, width int) string {
	barWidth := width - 22
	if barWidth < 20 {
		barWidth = 20
	}
	pct := m.styles.MetricStyle(percent).Render(fmt.Sprintf("%5.1f%%", percent))
	return fmt.Sprintf("  Usage: %s %s", m.styles.ProgressBar(barWidth, percent), pct)
}

func (m Model) detailRow(label, value string) string {
	return m.styles.Label.Render(fmt.Sprintf("  %-9s", label+":")) + " " + m.styles.Value.Render(value)
}
