// Package status projects the progress stream into a per-server status
// label and decides when a run has completed.
package status

import (
	"github.com/server-sentinel/sentinel/internal/eventlog"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/internal/protocol"
)

// Result describes what applying one message did.
type Result struct {
	Event protocol.Event
	Entry eventlog.Entry
	// Completed is true only for the first terminator of an armed run.
	Completed bool
	// Anomaly is true for a terminator received while no run was armed.
	Anomaly bool
}

// Projector is owned by the session loop and is not safe for concurrent use.
type Projector struct {
	log    *eventlog.Log
	parser protocol.Parser
	logger logger.Logger

	statuses map[string]string
	armed    bool
}

// NewProjector writes every applied message to log.
func NewProjector(log *eventlog.Log, parser protocol.Parser, l logger.Logger) *Projector {
	return &Projector{
		log:      log,
		parser:   parser,
		logger:   logger.OrDefault(l),
		statuses: make(map[string]string),
	}
}

// Arm prepares the projector to signal completion for a newly started run.
func (p *Projector) Arm() {
	p.armed = true
}

// Disarm drops a pending completion, used when a run is abandoned.
func (p *Projector) Disarm() {
	p.armed = false
}

// isArmed reports whether a completion is pending.
func (p *Projector) isArmed() bool {
	return p.armed
}

// Apply records raw in the event log, updates the projection, and reports
// completion at most once per armed run.
func (p *Projector) Apply(raw string) Result {
	res := Result{
		Entry: p.log.Append(raw),
		Event: p.parser.Parse(raw),
	}

	switch res.Event.Kind {
	case protocol.KindServerStatus:
		p.statuses[res.Event.Server] = res.Event.Text
	case protocol.KindRunComplete:
		if p.armed {
			p.armed = false
			res.Completed = true
		} else {
			res.Anomaly = true
			p.logger.Warn("PROTOCOL: completion marker with no run in flight: %q", raw)
		}
	case protocol.KindError:
		p.logger.Debug("backend reported error: %s", raw)
	}
	return res
}

// Status returns the latest status text for name.
func (p *Projector) Status(name string) (string, bool) {
	s, ok := p.statuses[name]
	return s, ok
}

// StatusOr returns the latest status for name, or fallback when none exists.
func (p *Projector) StatusOr(name, fallback string) string {
	if s, ok := p.statuses[name]; ok {
		return s
	}
	return fallback
}

// Snapshot returns a copy of every projected status.
func (p *Projector) Snapshot() map[string]string {
	out := make(map[string]string, len(p.statuses))
	for k, v := range p.statuses {
		out[k] = v
	}
	return out
}
