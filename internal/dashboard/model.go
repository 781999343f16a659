package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/server-sentinel/sentinel/internal/channel"
	"github.com/server-sentinel/sentinel/internal/config"
	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/internal/prefs"
	"github.com/server-sentinel/sentinel/internal/run"
	"github.com/server-sentinel/sentinel/internal/session"
)

// View is the screen the dashboard is showing.
type View int

const (
	ViewDashboard View = iota
	ViewDetail
)

// String returns a human-readable view name.
func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// Navigation is what the dashboard is showing. Detail holds the server name
// only; everything else is re-read from the session on every render.
type Navigation struct {
	View   View
	Server string
}

func (n Navigation) String() string {
	if n.View == ViewDetail {
		return fmt.Sprintf("detail(%s)", n.Server)
	}
	return n.View.String()
}

// AwaitingTask is the status label of a server nothing has been reported about.
const AwaitingTask = "Awaiting task..."

const (
	tickInterval   = time.Second
	noticeTTL      = 8 * time.Second
	logPanelHeight = 8
)

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeWarn
	noticeError
)

type notice struct {
	text  string
	level noticeLevel
	at    time.Time
}

// Options configures NewModel.
type Options struct {
	Session *session.Session
	// Events is the connection manager's event stream. Nil runs the
	// dashboard without a push channel.
	Events <-chan channel.Event
	// Prefs persists the theme toggle. Nil keeps the theme in memory only.
	Prefs       *prefs.Store
	Theme       string
	LogLines    int
	PullTimeout time.Duration
	Logger      logger.Logger
	Clock       func() time.Time
}

// Model is the Bubble Tea model for the fleet dashboard.
type Model struct {
	session     *session.Session
	events      <-chan channel.Event
	prefs       *prefs.Store
	logger      logger.Logger
	now         func() time.Time
	pullTimeout time.Duration
	logLines    int

	nav      Navigation
	selected int
	marked   map[string]bool

	theme  string
	styles Styles

	dirErr   error
	notice   notice
	showLog  bool
	showHelp bool
	quitting bool

	width  int
	height int

	detailViewport viewport.Model
	logViewport    viewport.Model
	viewportReady  bool
}

// NewModel creates a dashboard over a session.
func NewModel(opts Options) Model {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	theme := opts.Theme
	if theme == "" {
		theme = config.ThemeDark
	}
	logLines := opts.LogLines
	if logLines <= 0 {
		logLines = config.DefaultConfig().UI.LogLines
	}
	timeout := opts.PullTimeout
	if timeout <= 0 {
		timeout = config.DefaultConfig().Pull.Timeout
	}

	return Model{
		session:     opts.Session,
		events:      opts.Events,
		prefs:       opts.Prefs,
		logger:      logger.OrDefault(opts.Logger),
		now:         now,
		pullTimeout: timeout,
		logLines:    logLines,
		marked:      make(map[string]bool),
		theme:       theme,
		styles:      NewStyles(PaletteFor(theme)),
		showLog:     true,
	}
}

// Init loads the server directory and starts listening to the push channel.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadDirectoryCmd(),
		m.waitForEvent(),
		m.tickCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}
		if m.nav.View == ViewDetail && m.viewportReady {
			var vpCmd tea.Cmd
			m.detailViewport, vpCmd = m.detailViewport.Update(msg)
			return m, vpCmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewports()

	case channelEventMsg:
		return m, m.handleChannelEvent(channel.Event(msg))

	case channelDoneMsg:
		m.logger.Debug("push channel event stream closed")

	case directoryMsg:
		if msg.err != nil {
			m.dirErr = msg.err
			m.setNotice(noticeError, errors.Summary(msg.err))
			return m, nil
		}
		m.dirErr = nil
		m.clampSelection()
		return m, m.refreshCmd()

	case refreshMsg:
		applied, err := m.session.ApplyRefresh(msg.resp)
		if err != nil {
			m.setNotice(noticeError, errors.Summary(err))
			return m, nil
		}
		if applied && m.nav.View == ViewDetail {
			m.ShowDetail(m.nav.Server)
		}

	case tickMsg:
		if r, ok := m.session.CheckTimeout(); ok {
			m.setNotice(noticeWarn, fmt.Sprintf("Run %d timed out; controls re-enabled.", r.ID))
			m.syncLog()
		}
		if m.notice.text != "" && m.now().Sub(m.notice.at) > noticeTTL {
			m.notice = notice{}
		}
		return m, m.tickCmd()

	case themeSavedMsg:
		if msg.err != nil {
			m.setNotice(noticeWarn, "Theme not saved: "+errors.Summary(msg.err))
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderScreen()
}

// Navigation returns the current navigation state.
func (m Model) Navigation() Navigation {
	return m.nav
}

// Theme returns the active theme name.
func (m Model) Theme() string {
	return m.theme
}

// ShowDashboard returns to the card overview.
func (m *Model) ShowDashboard() {
	m.nav = Navigation{View: ViewDashboard}
}

// ShowDetail opens the detail view for name. Names that are not in the
// directory are ignored and leave navigation unchanged.
func (m *Model) ShowDetail(name string) bool {
	if !m.session.Directory.Has(name) {
		return false
	}
	changed := m.nav.View != ViewDetail || m.nav.Server != name
	m.nav = Navigation{View: ViewDetail, Server: name}
	for i, n := range m.session.Directory.Names() {
		if n == name {
			m.selected = i
			break
		}
	}
	m.updateDetailViewportContent()
	if changed && m.viewportReady {
		m.detailViewport.GotoTop()
	}
	return true
}

// OnRunCompleted pulls a fresh report snapshot. When it is applied, an open
// detail view is shown again with the new data.
func (m *Model) OnRunCompleted() tea.Cmd {
	return m.refreshCmd()
}

// SelectedServer returns the name under the cursor.
func (m Model) SelectedServer() string {
	names := m.session.Directory.Names()
	if m.selected >= 0 && m.selected < len(names) {
		return names[m.selected]
	}
	return ""
}

// Marked returns the servers toggled for a run, in directory order.
func (m Model) Marked() []string {
	var out []string
	for _, name := range m.session.Directory.Names() {
		if m.marked[name] {
			out = append(out, name)
		}
	}
	return out
}

// Notice returns the text of the current status-line notice.
func (m Model) Notice() string {
	return m.notice.text
}

func (m *Model) handleChannelEvent(ev channel.Event) tea.Cmd {
	out := m.session.HandleChannelEvent(ev)
	cmds := []tea.Cmd{m.waitForEvent()}

	switch {
	case out.Completed:
		m.setNotice(noticeInfo, fmt.Sprintf("Run %d complete.", out.Run.ID))
	case out.Abandoned:
		m.setNotice(noticeWarn, fmt.Sprintf("Run %d abandoned after reconnect.", out.Run.ID))
	}
	if out.Refresh {
		cmds = append(cmds, m.OnRunCompleted())
	}

	m.syncLog()
	if m.nav.View == ViewDetail {
		m.updateDetailViewportContent()
	}
	return tea.Batch(cmds...)
}

// submit starts a run for t unless one is already in flight.
func (m *Model) submit(t run.Targets) tea.Cmd {
	if !m.session.Runs.ControlsEnabled() {
		m.setNotice(noticeWarn, "A run is already in progress; wait for it to finish.")
		return nil
	}
	r, err := m.session.Submit(t)
	if err != nil {
		m.setNotice(noticeError, errors.Summary(err))
		return nil
	}
	m.setNotice(noticeInfo, fmt.Sprintf("Run %d started: %s", r.ID, t))
	return nil
}

func (m *Model) setNotice(level noticeLevel, text string) {
	m.notice = notice{text: text, level: level, at: m.now()}
}

func (m *Model) toggleTheme() tea.Cmd {
	m.theme = NextTheme(m.theme)
	m.styles = NewStyles(PaletteFor(m.theme))
	m.syncLog()
	if m.nav.View == ViewDetail {
		m.updateDetailViewportContent()
	}
	if m.prefs == nil {
		return nil
	}
	store, theme := m.prefs, m.theme
	return func() tea.Msg {
		return themeSavedMsg{theme: theme, err: store.SaveTheme(theme)}
	}
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := m.session.Directory.Len()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) toggleMark() {
	name := m.SelectedServer()
	if name == "" {
		return
	}
	if m.marked[name] {
		delete(m.marked, name)
	} else {
		m.marked[name] = true
	}
}

// contentHeight is the number of lines between the header and the footer,
// or 0 before the first window size is known.
func (m Model) contentHeight() int {
	if m.height == 0 {
		return 0
	}
	headerHeight := 2
	footerHeight := 2
	h := m.height - headerHeight - footerHeight
	if m.showLog {
		h -= logPanelHeight + 1
	}
	if h < 1 {
		h = 1
	}
	return h
}

// resizeViewports sizes the detail and log viewports to the terminal.
func (m *Model) resizeViewports() {
	detailHeight := m.contentHeight()
	if detailHeight < 1 {
		detailHeight = 1
	}

	if !m.viewportReady {
		m.detailViewport = viewport.New(m.width, detailHeight)
		m.logViewport = viewport.New(m.width, logPanelHeight)
		m.viewportReady = true
	} else {
		m.detailViewport.Width = m.width
		m.detailViewport.Height = detailHeight
		m.logViewport.Width = m.width
	}

	m.syncLog()
	if m.nav.View == ViewDetail {
		m.updateDetailViewportContent()
	}
}

func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady {
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent())
}

func (m *Model) syncLog() {
	if !m.viewportReady {
		return
	}
	m.logViewport.SetContent(m.renderLogContent())
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return channelDoneMsg{}
		}
		return channelEventMsg(ev)
	}
}

func (m Model) loadDirectoryCmd() tea.Cmd {
	sess, timeout := m.session, m.pullTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return directoryMsg{err: sess.LoadDirectory(ctx)}
	}
}

// refreshCmd takes a ticket now and fetches in the command goroutine, so
// responses are applied in the order refreshes were issued.
func (m *Model) refreshCmd() tea.Cmd {
	ticket := m.session.IssueRefresh()
	sess, timeout := m.session, m.pullTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshMsg{resp: sess.FetchRefresh(ctx, ticket)}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
