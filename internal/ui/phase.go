package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DividerWidth is the default width for divider lines.
const DividerWidth = 64

// PhaseDisplay renders the steps of a headless run (connect, submit, wait,
// pull) and the progress lines streamed in between.
type PhaseDisplay struct {
	w io.Writer
}

// NewPhaseDisplay creates a new phase display writing to w.
func NewPhaseDisplay(w io.Writer) *PhaseDisplay {
	return &PhaseDisplay{w: w}
}

// RenderProgress renders a phase in progress.
// Shows: ◐ Connecting...
func (pd *PhaseDisplay) RenderProgress(name string) {
	style := lipgloss.NewStyle().Foreground(ColorSecondary)
	fmt.Fprintf(pd.w, "%s %s...\n", style.Render(SymbolProgress), name)
}

// RenderSuccess renders a completed phase.
// Shows: ● Connected 0.3s
func (pd *PhaseDisplay) RenderSuccess(name string, duration time.Duration) {
	fmt.Fprintln(pd.w, FormatPhase(SymbolComplete, ColorSuccess, name, FormatDuration(duration)))
}

// RenderFailed renders a failed phase with the short form of err.
// Shows: ✗ Refresh failed 2.3s
func (pd *PhaseDisplay) RenderFailed(name string, duration time.Duration, err error) {
	fmt.Fprintln(pd.w, FormatPhase(SymbolFail, ColorError, name, FormatDuration(duration)))
	if err != nil {
		fmt.Fprintf(pd.w, "  %s\n", MutedStyle().Render(err.Error()))
	}
}

// RenderSkipped renders a skipped phase.
// Shows: ⊘ Refresh (run abandoned)
func (pd *PhaseDisplay) RenderSkipped(name string, reason string) {
	symbol := lipgloss.NewStyle().Foreground(ColorWarning).Render(SymbolSkipped)
	if reason != "" {
		fmt.Fprintf(pd.w, "%s %s %s\n", symbol, name, MutedStyle().Render("("+reason+")"))
		return
	}
	fmt.Fprintf(pd.w, "%s %s\n", symbol, name)
}

// RenderLine renders one progress line, indented under the current phase.
func (pd *PhaseDisplay) RenderLine(at time.Time, text string) {
	fmt.Fprintf(pd.w, "  %s %s\n", MutedStyle().Render(at.Format("15:04:05")), text)
}

// Divider renders a horizontal line between the progress stream and results.
func (pd *PhaseDisplay) Divider() {
	fmt.Fprintf(pd.w, "\n%s\n\n", FormatDivider(DividerWidth))
}

// Newline writes an empty line.
func (pd *PhaseDisplay) Newline() {
	fmt.Fprintln(pd.w)
}

// FormatPhase returns a formatted phase line as a string.
func FormatPhase(symbol string, symbolColor lipgloss.Color, name string, timing string) string {
	symbolStyle := lipgloss.NewStyle().Foreground(symbolColor)
	if timing == "" {
		return fmt.Sprintf("%s %s", symbolStyle.Render(symbol), name)
	}
	return fmt.Sprintf("%s %s %s", symbolStyle.Render(symbol), name, MutedStyle().Render(timing))
}

// FormatDivider returns a divider line as a string.
func FormatDivider(width int) string {
	return MutedStyle().Render(strings.Repeat("━", width))
}
