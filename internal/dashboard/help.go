package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// helpBindings defines all keyboard shortcuts shown in the help overlay.
var helpBindings = []HelpBinding{
	{Key: "up / k", Desc: "Select previous server"},
	{Key: "down / j", Desc: "Select next server"},
	{Key: "Space", Desc: "Mark server for a run"},
	{Key: "Enter", Desc: "Open server details"},
	{Key: "Esc", Desc: "Back to dashboard"},
	{Key: "r", Desc: "Run marked servers / this server"},
	{Key: "a", Desc: "Run all servers"},
	{Key: "u", Desc: "Pull latest report"},
	{Key: "l", Desc: "Toggle event log"},
	{Key: "t", Desc: "Toggle light / dark theme"},
	{Key: "?", Desc: "Toggle this help"},
	{Key: "q / Ctrl+C", Desc: "Quit"},
}

// renderHelpOverlay renders a centered help box with keyboard shortcuts.
func (m Model) renderHelpOverlay() string {
	var lines []string
	lines = append(lines, m.styles.HelpTitle.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	for _, binding := range helpBindings {
		lines = append(lines, m.styles.HelpKey.Render(binding.Key)+m.styles.HelpDesc.Render(binding.Desc))
	}

	lines = append(lines, "")
	lines = append(lines, m.styles.Label.Render("Run keys are ignored while a run is in progress."))
	lines = append(lines, m.styles.Label.Render("Press ? to close"))

	helpBox := m.styles.HelpBox.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return helpBox
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox,
		lipgloss.WithWhitespaceChars(" "),
	)
}
