// Package run tracks the single in-flight health-check run. It is the only
// writer of "run in progress" state and enforces one run at a time.
//
// A Controller is owned by the session loop and is not safe for concurrent use.
package run

import (
	"fmt"
	"strings"
	"time"

	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/util"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// State is the run state.
type State int

const (
	Idle State = iota
	InFlight
)

func (s State) String() string {
	if s == InFlight {
		return "in-flight"
	}
	return "idle"
}

// Targets is either every server or an explicit set of names.
type Targets struct {
	all   bool
	names []string
}

// All targets every configured server.
func All() Targets {
	return Targets{all: true}
}

// Servers targets the named servers. Duplicates are dropped, order kept.
func Servers(names ...string) Targets {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return Targets{names: out}
}

func (t Targets) IsAll() bool { return t.all }

// Names returns the explicit names, nil for All.
func (t Targets) Names() []string {
	if t.all {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Request builds the outbound message for these targets.
func (t Targets) Request() sdk.RunRequest {
	if t.all {
		return sdk.NewRunRequest(nil)
	}
	return sdk.NewRunRequest(t.Names())
}

func (t Targets) String() string {
	if t.all {
		return "all servers"
	}
	return strings.Join(t.names, ", ")
}

// Sender transmits a request over the push channel.
type Sender interface {
	Send(v interface{}) error
}

// Directory answers whether a server name is known.
type Directory interface {
	Has(name string) bool
}

// Run describes an accepted run.
type Run struct {
	ID        int
	Targets   Targets
	StartedAt time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout gives up on an in-flight run after d. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

type Controller struct {
	sender  Sender
	dir     Directory
	timeout time.Duration
	now     func() time.Time

	state   State
	current Run
	seq     int
}

// NewController returns an idle controller that sends through sender and
// validates names against dir.
func NewController(sender Sender, dir Directory, opts ...Option) *Controller {
	c := &Controller{
		sender: sender,
		dir:    dir,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit starts a run. It is rejected while another run is in flight, when
// the targets are empty or unknown, and when the channel cannot send; in all
// those cases the state is left unchanged.
func (c *Controller) Submit(t Targets) (Run, error) {
	if c.state == InFlight {
		return Run{}, errors.New(errors.ErrRun,
			fmt.Sprintf("Run already in progress (%s)", c.current.Targets),
			"Wait for the current run to finish before starting another")
	}
	if err := c.validate(t); err != nil {
		return Run{}, err
	}

	if err := c.sender.Send(t.Request()); err != nil {
		return Run{}, err
	}

	c.seq++
	c.state = InFlight
	c.current = Run{ID: c.seq, Targets: t, StartedAt: c.now()}
	return c.current, nil
}

func (c *Controller) validate(t Targets) error {
	if t.all {
		return nil
	}
	if len(t.names) == 0 {
		return errors.New(errors.ErrRun,
			"No servers selected.",
			"Select at least one server, or run all")
	}
	var unknown []string
	for _, n := range t.names {
		if c.dir == nil || !c.dir.Has(n) {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return errors.New(errors.ErrRun,
			fmt.Sprintf("Unknown server(s): %s", strings.Join(unknown, ", ")),
			c.unknownSuggestion(unknown))
	}
	return nil
}

// nameLister is implemented by directories that can list their names.
type nameLister interface {
	Names() []string
}

func (c *Controller) unknownSuggestion(unknown []string) string {
	const fallback = "Run 'sentinel servers' to see the configured names"
	lister, ok := c.dir.(nameLister)
	if !ok || len(unknown) != 1 {
		return fallback
	}
	similar := util.SuggestSimilar(unknown[0], lister.Names(), 2)
	if len(similar) == 0 {
		return fallback
	}
	return "Did you mean " + util.JoinOrNone(similar) + "?"
}

// Complete ends the in-flight run. It reports false when nothing was in flight.
func (c *Controller) Complete() (Run, bool) {
	return c.finish()
}

// Abandon ends the in-flight run without a terminator, e.g. after the channel
// was lost and re-opened or the run timed out.
func (c *Controller) Abandon() (Run, bool) {
	return c.finish()
}

func (c *Controller) finish() (Run, bool) {
	if c.state != InFlight {
		return Run{}, false
	}
	r := c.current
	c.state = Idle
	c.current = Run{}
	return r, true
}

// State returns the current run state.
func (c *Controller) State() State {
	return c.state
}

// ControlsEnabled reports whether run-initiating controls may be used.
func (c *Controller) ControlsEnabled() bool {
	return c.state == Idle
}

// Current returns the in-flight run.
func (c *Controller) Current() (Run, bool) {
	if c.state != InFlight {
		return Run{}, false
	}
	return c.current, true
}

// Timeout returns the configured run timeout (zero when disabled).
func (c *Controller) Timeout() time.Duration {
	return c.timeout
}

// Expired reports whether the in-flight run has outlived the timeout.
func (c *Controller) Expired(now time.Time) bool {
	if c.state != InFlight || c.timeout <= 0 {
		return false
	}
	return now.Sub(c.current.StartedAt) >= c.timeout
}

// Elapsed returns how long the in-flight run has been going.
func (c *Controller) Elapsed() time.Duration {
	if c.state != InFlight {
		return 0
	}
	return c.now().Sub(c.current.StartedAt)
}
