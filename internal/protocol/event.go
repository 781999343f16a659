// Package protocol turns the backend's free-text progress lines into typed
// events. The backend tags per-server lines with a bracketed name prefix and
// ends a run with a completion marker; all matching rules live here.
package protocol

import (
	"strings"
)

// DefaultCompletionMarker is the phrase the backend emits when a run finishes.
const DefaultCompletionMarker = "🏁 Process complete."

// errorPrefix marks an un-bracketed failure line.
const errorPrefix = "❌"

// Kind identifies the variant of an Event.
type Kind int

const (
	KindInfo Kind = iota
	KindServerStatus
	KindRunComplete
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindServerStatus:
		return "server-status"
	case KindRunComplete:
		return "run-complete"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one parsed progress line. Raw always holds the original text.
// Server and Text are set only for KindServerStatus.
type Event struct {
	Kind   Kind
	Raw    string
	Server string
	Text   string
}

// Parser applies the line conventions. The zero value uses the default marker.
type Parser struct {
	CompletionMarker string
}

// NewParser returns a parser that recognises marker as the run terminator.
// An empty marker falls back to DefaultCompletionMarker.
func NewParser(marker string) Parser {
	return Parser{CompletionMarker: marker}
}

func (p Parser) marker() string {
	if p.CompletionMarker == "" {
		return DefaultCompletionMarker
	}
	return p.CompletionMarker
}

// Parse classifies a single line. It never fails: lines matching no
// convention come back as KindInfo.
func (p Parser) Parse(line string) Event {
	ev := Event{Kind: KindInfo, Raw: line}

	// Terminator wins over a bracketed prefix.
	if strings.Contains(line, p.marker()) {
		ev.Kind = KindRunComplete
		return ev
	}

	if name, ok := serverName(line); ok {
		ev.Kind = KindServerStatus
		ev.Server = name
		ev.Text = statusText(line)
		return ev
	}

	if strings.HasPrefix(strings.TrimSpace(line), errorPrefix) {
		ev.Kind = KindError
	}
	return ev
}

// Parse classifies line using the default completion marker.
func Parse(line string) Event {
	return Parser{}.Parse(line)
}

// serverName returns the text between the first '[' and the next ']'.
func serverName(line string) (string, bool) {
	open := strings.IndexByte(line, '[')
	if open < 0 {
		return "", false
	}
	end := strings.IndexByte(line[open+1:], ']')
	if end <= 0 {
		return "", false
	}
	return line[open+1 : open+1+end], true
}

// statusText is everything after the last ']', trimmed.
func statusText(line string) string {
	idx := strings.LastIndexByte(line, ']')
	return strings.TrimSpace(line[idx+1:])
}
