// Package channel maintains the push channel to the backend: it dials,
// reads until the connection drops, and redials after a backoff delay for as
// long as its context lives. It knows nothing about what the messages mean.
package channel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
)

// State is the connection state of the push channel.
type State int

const (
	Connecting State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// EventKind identifies an observable transition.
type EventKind int

const (
	EventOpened EventKind = iota
	EventClosed
	EventMessage
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Event is delivered on Manager.Events in the order it happened.
type Event struct {
	Kind EventKind
	// Data holds the message text for EventMessage.
	Data string
	// Err is the dial or read error behind an EventClosed, if any.
	Err error
	// Retry is the delay before the next attempt, set on EventClosed.
	Retry time.Duration
	// Attempt counts dial attempts since the manager started.
	Attempt int
}

// Conn is the subset of *websocket.Conn the manager uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a Conn to url.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials with gorilla/websocket.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
}

func (d WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Option configures a Manager.
type Option func(*Manager)

func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

func WithBackoff(b Backoff) Option {
	return func(m *Manager) { m.backoff = b }
}

func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithBuffer sets the capacity of the Events channel.
func WithBuffer(n int) Option {
	return func(m *Manager) { m.buffer = n }
}

// withAfter replaces time.After in tests.
func withAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(m *Manager) { m.after = after }
}

// Manager supervises a single push channel. One goroutine (Run) owns the
// dial loop, so reconnection attempts never overlap.
type Manager struct {
	url     string
	dialer  Dialer
	backoff Backoff
	log     logger.Logger
	buffer  int
	after   func(time.Duration) <-chan time.Time

	events chan Event

	mu       sync.Mutex
	state    State
	conn     Conn
	attempts int

	writeMu sync.Mutex
}

// New creates a manager for url. Call Run to start it.
func New(url string, opts ...Option) *Manager {
	m := &Manager{
		url:     url,
		dialer:  WebsocketDialer{HandshakeTimeout: 10 * time.Second},
		backoff: DefaultBackoff(),
		log:     logger.NewEnvLogger("[channel]"),
		buffer:  64,
		after:   time.After,
		state:   Connecting,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.events = make(chan Event, m.buffer)
	return m
}

// URL returns the endpoint the manager dials.
func (m *Manager) URL() string {
	return m.url
}

// Events returns the transition stream. It is closed when Run returns.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Send writes v as a JSON text frame. It fails immediately with a CHANNEL
// error when the channel is not open; nothing is queued.
func (m *Manager) Send(v interface{}) error {
	m.mu.Lock()
	state, conn := m.state, m.conn
	m.mu.Unlock()

	if state != Open || conn == nil {
		return errors.NewChannelUnavailable(state.String())
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrChannel,
			"Couldn't encode outbound message",
			"This is a bug, please report it")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.WrapWithCode(err, errors.ErrChannel,
			"Couldn't send on the push channel",
			"The connection will be re-established automatically; try again once it is open")
	}
	return nil
}

// Run dials, reads, and redials until ctx is cancelled. It always returns
// ctx.Err() and closes the Events channel on the way out.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.events)

	for {
		m.setState(Connecting, nil)
		attempt := m.nextAttempt()
		m.log.Debug("dialing %s (attempt %d)", m.url, attempt)

		conn, err := m.dialer.Dial(ctx, m.url)
		if err != nil {
			if ctx.Err() != nil {
				m.setState(Closed, nil)
				return ctx.Err()
			}
			m.log.Debug("dial failed: %v", err)
		} else {
			m.backoff.Reset()
			m.setState(Open, conn)
			m.log.Info("connected to %s", m.url)
			if !m.emit(ctx, Event{Kind: EventOpened, Attempt: attempt}) {
				conn.Close()
				m.setState(Closed, nil)
				return ctx.Err()
			}
			err = m.readLoop(ctx, conn)
			conn.Close()
		}

		m.setState(Closed, nil)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := m.backoff.Next()
		m.log.Warn("connection closed, reconnecting in %s", delay)
		if !m.emit(ctx, Event{Kind: EventClosed, Err: err, Retry: delay, Attempt: attempt}) {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.after(delay):
		}
	}
}

func (m *Manager) readLoop(ctx context.Context, conn Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if !m.emit(ctx, Event{Kind: EventMessage, Data: string(data)}) {
			return ctx.Err()
		}
	}
}

// emit blocks until the event is delivered or ctx is done, so events are
// never dropped or reordered.
func (m *Manager) emit(ctx context.Context, ev Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (m *Manager) setState(s State, conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.conn = conn
}

func (m *Manager) nextAttempt() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	return m.attempts
}
