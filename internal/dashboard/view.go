package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/server-sentinel/sentinel/internal/channel"
	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/run"
	"github.com/server-sentinel/sentinel/internal/ui"
	"github.com/server-sentinel/sentinel/internal/util"
)

// renderScreen renders the active view with header, notice line, log panel and footer.
func (m Model) renderScreen() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.nav.View == ViewDetail {
		if m.viewportReady {
			b.WriteString(m.detailViewport.View())
		} else {
			b.WriteString(m.renderDetailContent())
		}
	} else {
		b.WriteString(m.renderServerCards())
	}

	if line := m.renderNotice(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}

	if m.showLog {
		b.WriteString("\n")
		b.WriteString(m.renderLogPanel())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title bar with fleet, channel and run state.
func (m Model) renderHeader() string {
	title := m.styles.Title.Render("sentinel")

	parts := []string{
		util.CountNoun(m.session.Directory.Len(), "server", "servers"),
		"channel " + m.renderChannelState(),
		m.renderRunState(),
		"updated " + ui.FormatAgo(m.session.Store.UpdatedAt()),
	}
	stats := m.styles.HeaderStats.Render(" | " + strings.Join(parts, " | "))

	return m.styles.Header.Render(title + stats)
}

func (m Model) renderChannelState() string {
	state := m.session.ChannelState()
	switch state {
	case channel.Open:
		return m.styles.StatusOnline.Render(state.String())
	case channel.Connecting:
		return m.styles.StatusRunning.Render(state.String())
	default:
		return m.styles.StatusOffline.Render(state.String())
	}
}

func (m Model) renderRunState() string {
	r, ok := m.session.Runs.Current()
	if !ok {
		return "idle"
	}
	text := fmt.Sprintf("run %d on %s %s", r.ID, r.Targets, ui.FormatDuration(m.session.Runs.Elapsed()))
	return m.styles.StatusRunning.Render(text)
}

// renderServerCards renders the grid of server cards.
func (m Model) renderServerCards() string {
	if m.dirErr != nil && !m.session.Directory.Loaded() {
		return m.styles.NoticeError.Render("Could not load servers: "+errors.Summary(m.dirErr)) +
			"\n" + m.styles.Label.Render("  Press u to retry.")
	}
	if !m.session.Directory.Loaded() {
		return m.styles.Label.Render("Loading servers...")
	}

	servers := m.session.Directory.List()
	if len(servers) == 0 {
		return m.styles.Label.Render("No servers configured")
	}

	cardWidth := m.calculateCardWidth()
	cards := make([]string, 0, len(servers))
	for i, s := range servers {
		cards = append(cards, m.renderCard(s, cardWidth, i == m.selected))
	}
	return m.layoutCards(cards, cardWidth)
}

// calculateCardWidth determines the card width based on terminal width.
func (m Model) calculateCardWidth() int {
	if m.width == 0 {
		return 40
	}
	if m.width >= 80 {
		return 38
	}
	return m.width - 4
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, cardWidth int) string {
	if len(cards) == 0 {
		return ""
	}

	cardsPerRow := 1
	if m.width > 0 {
		// Account for card margins and borders
		effectiveCardWidth := cardWidth + 3
		cardsPerRow = m.width / effectiveCardWidth
		if cardsPerRow < 1 {
			cardsPerRow = 1
		}
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := i + cardsPerRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return m.windowRows(rows, m.selected/cardsPerRow)
}

// windowRows keeps the row holding the selection on screen when the grid is
// taller than the content area. The last line then reports the visible range.
func (m Model) windowRows(rows []string, selectedRow int) string {
	avail := m.contentHeight()
	rowHeight := 1
	for _, r := range rows {
		rowHeight = max(rowHeight, lipgloss.Height(r))
	}
	if avail == 0 || len(rows)*rowHeight <= avail {
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	visible := max(1, (avail-1)/rowHeight)
	start := 0
	if selectedRow >= visible {
		start = selectedRow - visible + 1
	}
	end := min(start+visible, len(rows))

	grid := lipgloss.JoinVertical(lipgloss.Left, rows[start:end]...)
	more := m.styles.Muted.Render(fmt.Sprintf("rows %d-%d of %d", start+1, end, len(rows)))
	return grid + "\n" + more
}

// renderNotice renders the status line, empty when there is nothing to say.
func (m Model) renderNotice() string {
	if m.notice.text == "" {
		return ""
	}
	switch m.notice.level {
	case noticeError:
		return m.styles.NoticeError.Render(ui.SymbolFail + " " + m.notice.text)
	case noticeWarn:
		return m.styles.NoticeWarn.Render("! " + m.notice.text)
	default:
		return m.styles.NoticeInfo.Render(m.notice.text)
	}
}

// renderLogPanel renders the event log, newest entry first.
func (m Model) renderLogPanel() string {
	content := m.renderLogContent()
	if m.viewportReady {
		content = m.logViewport.View()
	}
	return m.styles.LogPanel.Render(content)
}

func (m Model) renderLogContent() string {
	entries := m.session.Log.Newest(m.logLines)
	if len(entries) == 0 {
		return m.styles.Muted.Render("No events yet")
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		stamp := m.styles.Muted.Render("[" + e.At.Format("15:04:05") + "]")
		lines = append(lines, stamp+" "+m.styles.Value.Render(e.Text))
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the keyboard hint line for the active view.
func (m Model) renderFooter() string {
	var hints []string
	if m.nav.View == ViewDetail {
		hints = []string{"esc back", "r run this server", "u refresh", "↑↓ scroll"}
	} else {
		hints = []string{"↑↓ select", "space mark", "enter details", "r run marked", "a run all", "u refresh"}
	}
	hints = append(hints, "l log", "t theme", "? help", "q quit")

	if !m.session.Runs.ControlsEnabled() {
		hints = append([]string{"run in progress"}, hints...)
	}
	return m.styles.Footer.Render(strings.Join(hints, " | "))
}

// statusLabel returns the projected status for name or the awaiting label.
func (m Model) statusLabel(name string) string {
	return m.session.StatusLabel(name, AwaitingTask)
}

// inCurrentRun reports whether name is targeted by the in-flight run.
func (m Model) inCurrentRun(name string) bool {
	r, ok := m.session.Runs.Current()
	if !ok {
		return false
	}
	return targets(r.Targets, name)
}

func targets(t run.Targets, name string) bool {
	if t.IsAll() {
		return true
	}
	for _, n := range t.Names() {
		if n == name {
			return true
		}
	}
	return false
}
