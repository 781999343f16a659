package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/server-sentinel/sentinel/internal/config"
	"github.com/server-sentinel/sentinel/internal/ui"
)

// Palette is the set of colors a theme paints the dashboard with.
type Palette struct {
	Surface       lipgloss.Color
	Border        lipgloss.Color
	Healthy       lipgloss.Color
	Warning       lipgloss.Color
	Critical      lipgloss.Color
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	Accent        lipgloss.Color
	Graph         lipgloss.Color
}

// DarkPalette is the default theme.
var DarkPalette = Palette{
	Surface:       lipgloss.Color("#12121A"),
	Border:        lipgloss.Color("#2A2A4A"),
	Healthy:       lipgloss.Color("#39FF14"),
	Warning:       lipgloss.Color("#FFAA00"),
	Critical:      lipgloss.Color("#FF0055"),
	TextPrimary:   lipgloss.Color("#FFFFFF"),
	TextSecondary: lipgloss.Color("#B4B4D0"),
	TextMuted:     lipgloss.Color("#6B6B8D"),
	Accent:        lipgloss.Color("#FF2E97"),
	Graph:         lipgloss.Color("#00FFFF"),
}

// LightPalette is tuned for light terminal backgrounds.
var LightPalette = Palette{
	Surface:       lipgloss.Color("#F4F4F8"),
	Border:        lipgloss.Color("#C8C8D8"),
	Healthy:       lipgloss.Color("#1A7F37"),
	Warning:       lipgloss.Color("#9A6700"),
	Critical:      lipgloss.Color("#CF222E"),
	TextPrimary:   lipgloss.Color("#1F2328"),
	TextSecondary: lipgloss.Color("#4B4F58"),
	TextMuted:     lipgloss.Color("#8C8F98"),
	Accent:        lipgloss.Color("#8250DF"),
	Graph:         lipgloss.Color("#0969DA"),
}

// PaletteFor returns the palette for a theme name, dark for anything unknown.
func PaletteFor(theme string) Palette {
	if theme == config.ThemeLight {
		return LightPalette
	}
	return DarkPalette
}

// NextTheme returns the theme the toggle key switches to.
func NextTheme(theme string) string {
	if theme == config.ThemeLight {
		return config.ThemeDark
	}
	return config.ThemeLight
}

// Styles holds every lipgloss style the dashboard renders with. It is rebuilt
// whenever the theme changes.
type Styles struct {
	Palette Palette

	Header       lipgloss.Style
	HeaderStats  lipgloss.Style
	Title        lipgloss.Style
	Footer       lipgloss.Style
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	ServerName   lipgloss.Style
	Label        lipgloss.Style
	Value        lipgloss.Style
	Muted        lipgloss.Style
	Section      lipgloss.Style
	SectionTitle lipgloss.Style
	LogPanel     lipgloss.Style

	StatusOnline  lipgloss.Style
	StatusOffline lipgloss.Style
	StatusPending lipgloss.Style
	StatusRunning lipgloss.Style

	NoticeInfo  lipgloss.Style
	NoticeWarn  lipgloss.Style
	NoticeError lipgloss.Style

	HelpBox   lipgloss.Style
	HelpTitle lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
}

// NewStyles builds the style set for a palette.
func NewStyles(p Palette) Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1).
		MarginRight(1).
		MarginBottom(1)

	return Styles{
		Palette: p,

		Header: lipgloss.NewStyle().
			Foreground(p.TextPrimary).
			Background(p.Surface).
			Bold(true).
			Padding(0, 1),
		HeaderStats: lipgloss.NewStyle().Foreground(p.TextSecondary),
		Title:       lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Padding(0, 1),
		Card:         card,
		CardSelected: card.BorderForeground(p.Accent),
		ServerName:   lipgloss.NewStyle().Foreground(p.TextPrimary).Bold(true),
		Label:        lipgloss.NewStyle().Foreground(p.TextSecondary),
		Value:        lipgloss.NewStyle().Foreground(p.TextPrimary),
		Muted:        lipgloss.NewStyle().Foreground(p.TextMuted),
		Section: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1).
			MarginBottom(1),
		SectionTitle: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		LogPanel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(p.Border).
			Padding(0, 1),

		StatusOnline:  lipgloss.NewStyle().Foreground(p.Healthy),
		StatusOffline: lipgloss.NewStyle().Foreground(p.Critical),
		StatusPending: lipgloss.NewStyle().Foreground(p.TextSecondary),
		StatusRunning: lipgloss.NewStyle().Foreground(p.Warning),

		NoticeInfo:  lipgloss.NewStyle().Foreground(p.Graph).Padding(0, 1),
		NoticeWarn:  lipgloss.NewStyle().Foreground(p.Warning).Padding(0, 1),
		NoticeError: lipgloss.NewStyle().Foreground(p.Critical).Bold(true).Padding(0, 1),

		HelpBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),
		HelpTitle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true).
			MarginBottom(1),
		HelpKey: lipgloss.NewStyle().
			Foreground(p.TextPrimary).
			Bold(true).
			Width(14),
		HelpDesc: lipgloss.NewStyle().Foreground(p.TextSecondary),
	}
}

// Status indicator glyphs.
const (
	GlyphOnline  = "◉"
	GlyphOffline = "◌"
	GlyphPending = "○"
	GlyphMarked  = "■"
	GlyphUnmark  = "□"
)

// MetricColor returns the palette color for a percentage-based metric:
// healthy below 70%, warning below 90%, critical above.
func (s Styles) MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= ui.CriticalPercent:
		return s.Palette.Critical
	case percent >= ui.WarnPercent:
		return s.Palette.Warning
	default:
		return s.Palette.Healthy
	}
}

// MetricStyle returns a style colored by MetricColor.
func (s Styles) MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.MetricColor(percent))
}

// ProgressBar renders a bar of the given width filled to percent.
func (s Styles) ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return s.MetricStyle(percent).Render(bar)
}

// Divider renders a thin horizontal rule.
func (s Styles) Divider(width int) string {
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().Foreground(s.Palette.Border).Render(strings.Repeat("─", width))
}
