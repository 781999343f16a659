package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused in CLI output, so selection looks like any other row.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// ServerColumns are the columns of RenderServerTable.
var ServerColumns = []TableColumn{
	{Title: "NAME", Width: 18},
	{Title: "HOST", Width: 24},
	{Title: "USER", Width: 12},
}

// RenderServerTable renders the server directory.
func RenderServerTable(servers []sdk.Server) string {
	if len(servers) == 0 {
		return "No servers configured on the backend"
	}
	rows := make([][]string, len(servers))
	for i, s := range servers {
		rows[i] = []string{s.Name, s.Address(), s.User}
	}
	return RenderSimpleTable(ServerColumns, rows)
}

// ReportRow pairs a directory entry with its report, if any.
type ReportRow struct {
	Server sdk.Server
	Report *sdk.ServerReport
}

// RenderReportTable renders one line per server: online state, CPU, memory
// and swap. Servers without a report show a pending marker. Cells are
// padded by hand because bubbles/table truncates ANSI-styled cells.
func RenderReportTable(rows []ReportRow) string {
	if len(rows) == 0 {
		return "No servers configured on the backend"
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var out string
	out += headerStyle.Render(fmt.Sprintf("  %-8s %-18s %-8s %-22s %s", "STATE", "SERVER", "CPU", "MEMORY", "SWAP")) + "\n"

	for _, row := range rows {
		name := padRight(row.Server.Name, 18)
		r := row.Report
		if r == nil {
			out += fmt.Sprintf("  %s %s %s\n",
				padRight(MutedStyle().Render(SymbolPending+" none"), 8),
				name,
				MutedStyle().Render("no data yet"))
			continue
		}
		if !r.IsOnline {
			reason := r.Error
			if reason == "" {
				reason = "offline"
			}
			out += fmt.Sprintf("  %s %s %s\n",
				padRight(ErrorStyle().Render(SymbolFail+" down"), 8),
				name,
				ErrorStyle().Render(reason))
			continue
		}

		cpu := lipgloss.NewStyle().Foreground(ThresholdColor(r.CPUUsage)).Render(FormatPercent(r.CPUUsage))
		memPct := r.MemUsedPercent()
		mem := lipgloss.NewStyle().Foreground(ThresholdColor(memPct)).
			Render(fmt.Sprintf("%s / %s", FormatMB(r.MemUsedMB), FormatMB(r.MemTotalMB)))
		swap := MutedStyle().Render("none")
		if r.SwapTotalMB > 0 {
			swap = fmt.Sprintf("%s free", FormatMB(r.SwapFreeMB()))
		}

		out += fmt.Sprintf("  %s %s %s %s %s\n",
			padRight(SuccessStyle().Render(SymbolComplete+" up"), 8),
			name,
			padRight(cpu, 8),
			padRight(mem, 22),
			swap)
	}
	return out
}

// padRight pads s to width visible cells, ignoring ANSI codes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	for i := visible; i < width; i++ {
		s += " "
	}
	return s
}
