// Package session is the single owner of client state for one connection to
// the backend: directory, report store, event log, status projection, run
// state and metric history. The dashboard and the headless run command both
// drive a Session from one loop, so none of its methods need to be called
// concurrently except the pull helpers noted below.
package session

import (
	"context"
	"time"

	"github.com/server-sentinel/sentinel/internal/channel"
	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/eventlog"
	"github.com/server-sentinel/sentinel/internal/history"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/internal/protocol"
	"github.com/server-sentinel/sentinel/internal/run"
	"github.com/server-sentinel/sentinel/internal/snapshot"
	"github.com/server-sentinel/sentinel/internal/status"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// Channel is the push channel as seen by the session.
type Channel interface {
	Send(v interface{}) error
	State() channel.State
}

// Backend is the pull API.
type Backend interface {
	snapshot.ServerLister
	snapshot.ReportFetcher
}

// Options configures New.
type Options struct {
	Backend          Backend
	Channel          Channel
	CompletionMarker string
	RunTimeout       time.Duration
	HistorySize      int
	Logger           logger.Logger
	Clock            func() time.Time
}

type Session struct {
	Directory *snapshot.Directory
	Store     *snapshot.Store
	Log       *eventlog.Log
	Projector *status.Projector
	Runs      *run.Controller
	History   *history.History

	channel Channel
	logger  logger.Logger
	now     func() time.Time

	// lostDuringRun is set when the channel closes while a run is in flight.
	lostDuringRun bool
}

// Outcome reports what one stimulus did to the session.
type Outcome struct {
	// Message is the projector result for EventMessage.
	Message status.Result
	// Completed is set when a terminator finished the in-flight run.
	Completed bool
	// Abandoned is set when a reconnect gave up on the in-flight run.
	Abandoned bool
	// Run is the run that completed or was abandoned.
	Run run.Run
	// Refresh tells the caller to issue exactly one snapshot refresh.
	Refresh bool
}

func New(opts Options) *Session {
	l := logger.OrDefault(opts.Logger)
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	s := &Session{
		Log:     eventlog.NewWithClock(now),
		History: history.New(opts.HistorySize),
		channel: opts.Channel,
		logger:  l,
		now:     now,
	}
	s.Directory = snapshot.NewDirectory(opts.Backend)
	s.Store = snapshot.NewStore(opts.Backend,
		snapshot.WithStoreLogger(l),
		snapshot.WithStoreClock(now),
		snapshot.OnReplace(func(snap snapshot.Snapshot) {
			s.History.Record(snap.Reports)
		}),
	)
	s.Projector = status.NewProjector(s.Log, protocol.NewParser(opts.CompletionMarker), l)
	var sender run.Sender = noChannel{}
	if opts.Channel != nil {
		sender = opts.Channel
	}
	s.Runs = run.NewController(sender, s.Directory,
		run.WithTimeout(opts.RunTimeout),
		run.WithClock(now),
	)
	return s
}

type noChannel struct{}

func (noChannel) Send(interface{}) error {
	return errors.NewChannelUnavailable(channel.Closed.String())
}

// ChannelState returns the push channel state, Closed when there is none.
func (s *Session) ChannelState() channel.State {
	if s.channel == nil {
		return channel.Closed
	}
	return s.channel.State()
}

// LoadDirectory pulls the server list. Safe to call from a goroutine.
func (s *Session) LoadDirectory(ctx context.Context) error {
	return s.Directory.Load(ctx)
}

// Submit starts a run and arms completion detection for it.
func (s *Session) Submit(t run.Targets) (run.Run, error) {
	r, err := s.Runs.Submit(t)
	if err != nil {
		return run.Run{}, err
	}
	s.Projector.Arm()
	s.logger.Info("run %d started: %s", r.ID, t)
	return r, nil
}

// HandleChannelEvent applies one push-channel transition.
func (s *Session) HandleChannelEvent(ev channel.Event) Outcome {
	switch ev.Kind {
	case channel.EventOpened:
		s.Log.Notef("✅ Push channel connected.")
		if s.lostDuringRun {
			s.lostDuringRun = false
			if r, ok := s.abandon(); ok {
				s.Log.Notef("⚠️ Connection was lost during run %d (%s); its progress is unknown. Start it again if needed.", r.ID, r.Targets)
				return Outcome{Abandoned: true, Run: r}
			}
		}

	case channel.EventClosed:
		if ev.Retry > 0 {
			s.Log.Notef("⚠️ Push channel closed. Reconnecting in %s...", ev.Retry.Round(100*time.Millisecond))
		} else {
			s.Log.Notef("⚠️ Push channel closed. Reconnecting...")
		}
		if s.Runs.State() == run.InFlight {
			s.lostDuringRun = true
		}

	case channel.EventMessage:
		res := s.Projector.Apply(ev.Data)
		out := Outcome{Message: res}
		if res.Completed {
			if r, ok := s.Runs.Complete(); ok {
				out.Completed = true
				out.Run = r
				out.Refresh = true
				s.logger.Info("run %d complete after %s", r.ID, s.now().Sub(r.StartedAt).Round(time.Millisecond))
			}
		}
		return out
	}
	return Outcome{}
}

// CheckTimeout abandons the in-flight run if it has outlived the configured
// run timeout.
func (s *Session) CheckTimeout() (run.Run, bool) {
	if !s.Runs.Expired(s.now()) {
		return run.Run{}, false
	}
	r, ok := s.abandon()
	if ok {
		s.Log.Notef("⏱️ Run %d (%s) timed out after %s without a completion marker.", r.ID, r.Targets, s.Runs.Timeout())
	}
	return r, ok
}

func (s *Session) abandon() (run.Run, bool) {
	r, ok := s.Runs.Abandon()
	if ok {
		s.Projector.Disarm()
		s.logger.Warn("run %d abandoned", r.ID)
	}
	return r, ok
}

// IssueRefresh takes a ticket for a snapshot refresh.
func (s *Session) IssueRefresh() snapshot.Ticket {
	return s.Store.Issue()
}

// FetchRefresh performs the pull for t. Safe to call from a goroutine.
func (s *Session) FetchRefresh(ctx context.Context, t snapshot.Ticket) snapshot.Response {
	return s.Store.Fetch(ctx, t)
}

// ApplyRefresh installs a fetched response.
func (s *Session) ApplyRefresh(resp snapshot.Response) (bool, error) {
	applied, err := s.Store.Apply(resp)
	if err == nil && !applied {
		s.logger.Debug("refresh %d arrived after a newer one; dropped (%d this session)", resp.Ticket, s.Store.Dropped())
	}
	return applied, err
}

// Report returns the latest report for name.
func (s *Session) Report(name string) (sdk.ServerReport, bool) {
	return s.Store.Lookup(name)
}

// StatusLabel returns the projected status for name, or fallback.
func (s *Session) StatusLabel(name, fallback string) string {
	return s.Projector.StatusOr(name, fallback)
}
