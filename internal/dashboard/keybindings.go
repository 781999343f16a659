package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/server-sentinel/sentinel/internal/run"
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeyToggleMark  = " "
	KeyToggleMarkS = "space"
	KeyOpen        = "enter"
	KeyBack        = "esc"
	KeyRunAll      = "a"
	KeyRun         = "r"
	KeyRefresh     = "u"
	KeyToggleLog   = "l"
	KeyToggleTheme = "t"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp {
		switch key {
		case KeyBack:
			m.showHelp = false
			return true, nil
		case KeyQuit, KeyQuitAlt:
			m.quitting = true
			return true, tea.Quit
		}
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyBack:
		m.ShowDashboard()
		return true, nil

	case KeyRefresh:
		if !m.session.Directory.Loaded() || m.dirErr != nil {
			return true, m.loadDirectoryCmd()
		}
		return true, m.refreshCmd()

	case KeyRunAll:
		return true, m.submit(run.All())

	case KeyRun:
		if m.nav.View == ViewDetail {
			return true, m.submit(run.Servers(m.nav.Server))
		}
		return true, m.submit(run.Servers(m.Marked()...))

	case KeyToggleLog:
		m.showLog = !m.showLog
		if m.viewportReady {
			m.resizeViewports()
		}
		return true, nil

	case KeyToggleTheme:
		return true, m.toggleTheme()
	}

	if m.nav.View == ViewDetail {
		// Remaining keys scroll the detail viewport.
		return false, nil
	}

	switch key {
	case KeySelectPrev, KeySelectPrevK:
		m.moveSelection(-1)
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		m.moveSelection(1)
		return true, nil

	case KeyToggleMark, KeyToggleMarkS:
		m.toggleMark()
		return true, nil

	case KeyOpen:
		m.ShowDetail(m.SelectedServer())
		return true, nil
	}

	return false, nil
}
