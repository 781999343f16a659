package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/server-sentinel/sentinel/pkg/sdk"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestThresholdColor(t *testing.T) {
	tests := []struct {
		percent float64
		want    lipgloss.Color
	}{
		{0, ColorSuccess},
		{69.9, ColorSuccess},
		{70, ColorWarning},
		{89.9, ColorWarning},
		{90, ColorError},
		{150, ColorError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ThresholdColor(tt.percent), "%.1f%%", tt.percent)
	}
}

func TestFormatMB(t *testing.T) {
	assert.Equal(t, "0 B", FormatMB(0))
	assert.Equal(t, "0 B", FormatMB(-5))
	assert.Equal(t, "512 MiB", FormatMB(512))
	assert.Equal(t, "2.0 GiB", FormatMB(2048))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.3%", FormatPercent(12.34))
}

func TestFormatAgo(t *testing.T) {
	assert.Equal(t, "never", FormatAgo(time.Time{}))
	assert.Contains(t, FormatAgo(time.Now().Add(-3*time.Second)), "ago")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.05s", FormatDuration(50*time.Millisecond))
	assert.Equal(t, "2.3s", FormatDuration(2300*time.Millisecond))
}

func TestPhaseDisplay(t *testing.T) {
	var buf bytes.Buffer
	pd := NewPhaseDisplay(&buf)

	pd.RenderProgress("Connecting")
	pd.RenderSuccess("Connected", 300*time.Millisecond)
	pd.RenderLine(time.Date(2024, 1, 1, 9, 30, 5, 0, time.UTC), "[srv1] done")
	pd.RenderFailed("Refresh failed", 2300*time.Millisecond, errors.New("502"))
	pd.RenderSkipped("Refresh", "run abandoned")
	pd.Divider()

	out := buf.String()
	assert.Contains(t, out, SymbolProgress+" Connecting...")
	assert.Contains(t, out, SymbolComplete+" Connected 0.3s")
	assert.Contains(t, out, "09:30:05 [srv1] done")
	assert.Contains(t, out, SymbolFail+" Refresh failed 2.3s")
	assert.Contains(t, out, "502")
	assert.Contains(t, out, SymbolSkipped+" Refresh (run abandoned)")
	assert.Contains(t, out, strings.Repeat("━", DividerWidth))
}

func TestRenderSparkline(t *testing.T) {
	assert.Empty(t, RenderSparkline(nil, 10))
	assert.Empty(t, RenderSparkline([]float64{1}, 0))

	assert.Equal(t, "▁▄█", RenderSparkline([]float64{0, 50, 100}, 10))
	assert.Equal(t, "█", RenderSparkline([]float64{0, 50, 100}, 1), "keeps the newest values")
	assert.Equal(t, "▁█", RenderSparkline([]float64{-10, 250}, 5), "values are clamped")
}

func TestRenderServerTable(t *testing.T) {
	assert.Contains(t, RenderServerTable(nil), "No servers")

	out := RenderServerTable([]sdk.Server{{Name: "srv1", Host: "10.0.0.1", User: "root", Port: 22}})
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "srv1")
	assert.Contains(t, out, "10.0.0.1:22")
	assert.Contains(t, out, "root")
}

func TestRenderReportTable(t *testing.T) {
	rows := []ReportRow{
		{Server: sdk.Server{Name: "up"}, Report: &sdk.ServerReport{ServerName: "up", IsOnline: true, CPUUsage: 42, MemUsedMB: 1024, MemTotalMB: 2048, SwapTotalMB: 512, SwapUsedMB: 0}},
		{Server: sdk.Server{Name: "down"}, Report: &sdk.ServerReport{ServerName: "down", Error: "ssh: handshake failed"}},
		{Server: sdk.Server{Name: "new"}},
	}

	out := RenderReportTable(rows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)

	assert.Contains(t, out, "42.0%")
	assert.Contains(t, out, "1.0 GiB / 2.0 GiB")
	assert.Contains(t, out, "512 MiB free")
	assert.Contains(t, out, "ssh: handshake failed")
	assert.Contains(t, out, "no data yet")
	assert.Contains(t, RenderReportTable(nil), "No servers")
}

func TestServerOptions(t *testing.T) {
	opts := ServerOptions([]sdk.Server{{Name: "srv1", Host: "h", Port: 22}})
	require.Len(t, opts, 1)
	assert.Equal(t, "srv1", opts[0].Value)
	assert.Equal(t, "srv1 (h:22)", opts[0].Key)
}

func TestPickServers_Empty(t *testing.T) {
	_, err := PickServers(nil)
	assert.Error(t, err)
}
