package dashboard

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/server-sentinel/sentinel/internal/config"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, DarkPalette, PaletteFor(config.ThemeDark))
	assert.Equal(t, LightPalette, PaletteFor(config.ThemeLight))
	assert.Equal(t, DarkPalette, PaletteFor("solarized"))
}

func TestNextTheme(t *testing.T) {
	assert.Equal(t, config.ThemeLight, NextTheme(config.ThemeDark))
	assert.Equal(t, config.ThemeDark, NextTheme(config.ThemeLight))
	assert.Equal(t, config.ThemeLight, NextTheme(""))
}

func TestStyles_MetricColor(t *testing.T) {
	s := NewStyles(DarkPalette)
	tests := []struct {
		name    string
		percent float64
		expect  lipgloss.Color
	}{
		{"zero", 0, DarkPalette.Healthy},
		{"below warning", 69.9, DarkPalette.Healthy},
		{"at warning", 70, DarkPalette.Warning},
		{"below critical", 89.9, DarkPalette.Warning},
		{"at critical", 90, DarkPalette.Critical},
		{"over", 150, DarkPalette.Critical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, s.MetricColor(tt.percent))
		})
	}
}

func TestStyles_ProgressBar(t *testing.T) {
	s := NewStyles(DarkPalette)
	tests := []struct {
		name    string
		width   int
		percent float64
		filled  int
	}{
		{"empty", 10, 0, 0},
		{"half", 10, 50, 5},
		{"full", 10, 100, 10},
		{"clamped high", 10, 250, 10},
		{"clamped low", 10, -5, 0},
		{"minimum width", 0, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := s.ProgressBar(tt.width, tt.percent)
			assert.Equal(t, tt.filled, strings.Count(bar, "▰"))
			assert.Equal(t, lipgloss.Width(bar), strings.Count(bar, "▰")+strings.Count(bar, "▱"))
		})
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "short", truncateWithEllipsis("short", 10))
	assert.Equal(t, "abcdefg...", truncateWithEllipsis("abcdefghijklmnop", 10))
	assert.Equal(t, "ünï...", truncateWithEllipsis("ünïcödé", 6))
	assert.Equal(t, "abcdef", truncateWithEllipsis("abcdef", 3))
}

func TestRenderDashboard_Cards(t *testing.T) {
	f := newFixture(t)

	view := f.model.View()
	assert.Contains(t, view, "sentinel")
	assert.Contains(t, view, "2 servers")
	assert.Contains(t, view, "channel open")
	assert.Contains(t, view, "idle")
	assert.Contains(t, view, "srv1")
	assert.Contains(t, view, "root@10.0.0.1:22")
	assert.Contains(t, view, "admin@10.0.0.2:2222")
	assert.Contains(t, view, AwaitingTask)
	assert.Contains(t, view, "No data yet")
	assert.Contains(t, view, "No events yet")

	f.press(t, "u")
	view = f.model.View()
	assert.Contains(t, view, "42.0%")
	assert.Contains(t, view, "50.0%", "memory usage")
}

func TestRenderDashboard_GridFollowsSelection(t *testing.T) {
	f := newFixture(t)
	f.backend.servers = nil
	for i := 1; i <= 12; i++ {
		f.backend.servers = append(f.backend.servers, sdk.Server{
			Name: fmt.Sprintf("web-%02d", i), Host: fmt.Sprintf("10.0.1.%d", i), User: "root", Port: 22,
		})
	}
	require.NoError(t, f.session.LoadDirectory(context.Background()))
	f.send(t, tea.WindowSizeMsg{Width: 40, Height: 30})

	view := f.model.View()
	assert.Contains(t, view, "web-01")
	assert.NotContains(t, view, "web-12")
	assert.Contains(t, view, "of 12")

	for i := 0; i < 11; i++ {
		f.press(t, "j")
	}
	require.Equal(t, "web-12", f.model.SelectedServer())

	view = f.model.View()
	assert.Contains(t, view, "web-12", "selected card stays on screen")
	assert.NotContains(t, view, "web-01")
	assert.Contains(t, view, "-12 of 12")
}

func TestRenderDashboard_OfflineCard(t *testing.T) {
	f := newFixture(t)
	f.backend.reports = append(f.backend.reports, sentinelReport("srv2", false, "dial tcp: i/o timeout"))

	f.press(t, "u")
	view := f.model.View()
	assert.Contains(t, view, "Offline: dial tcp")
}

func TestRenderDashboard_RunInProgress(t *testing.T) {
	f := newFixture(t)

	f.press(t, "a")
	f.receive(t, "[srv2] connecting...")

	view := f.model.View()
	assert.Contains(t, view, "run 1 on all")
	assert.Contains(t, view, "run in progress")
	assert.Contains(t, view, "connecting...")
	assert.Contains(t, view, "[srv2] connecting...", "log panel shows the raw line")
}

func TestRenderLogPanel_Hidden(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "[srv1] hello")
	assert.Contains(t, f.model.View(), "[srv1] hello")

	f.press(t, "l")
	assert.NotContains(t, f.model.View(), "[srv1] hello")
}

func TestRenderDetail_Identity(t *testing.T) {
	f := newFixture(t)

	f.press(t, "j", "enter")
	content := f.model.renderDetailContent()
	assert.Contains(t, content, "srv2")
	assert.Contains(t, content, "10.0.0.2:2222")
	assert.Contains(t, content, "admin")
	assert.Contains(t, content, NoDataYet)
	assert.Contains(t, f.model.View(), "esc back")
}

func TestRenderDetail_Swap(t *testing.T) {
	f := newFixture(t)
	f.backend.reports[0].SwapTotalMB = 1024
	f.backend.reports[0].SwapUsedMB = 1536
	f.backend.reports[0].CacheCleared = true

	f.press(t, "u", "enter")
	content := f.model.renderDetailContent()
	assert.Contains(t, content, "Swap")
	assert.Contains(t, content, "Free:     0 B", "derived swap free never goes negative")
	assert.Contains(t, content, "Page cache cleared")
}

func sentinelReport(name string, online bool, errText string) sdk.ServerReport {
	return sdk.ServerReport{ServerName: name, IsOnline: online, Error: errText}
}
