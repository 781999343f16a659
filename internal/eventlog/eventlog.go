// Package eventlog keeps the raw, ordered record of everything received on
// the push channel, plus the client's own connection notes.
package eventlog

import (
	"fmt"
	"sync"
	"time"
)

// Source says where an entry came from.
type Source int

const (
	// Inbound entries are verbatim push-channel messages.
	Inbound Source = iota
	// Note entries are written by the client (connection changes, abandoned runs).
	Note
)

// Entry is a single log line.
type Entry struct {
	Seq    int
	At     time.Time
	Source Source
	Text   string
}

// String formats the entry the way the log panel shows it.
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.At.Format("15:04:05"), e.Text)
}

// Log is append-only. Entries keep arrival order; Newest returns them
// reversed for display.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// New returns an empty log.
func New() *Log {
	return &Log{now: time.Now}
}

// NewWithClock returns a log that timestamps entries with now.
func NewWithClock(now func() time.Time) *Log {
	return &Log{now: now}
}

// Append records an inbound message verbatim.
func (l *Log) Append(text string) Entry {
	return l.add(Inbound, text)
}

// Notef records a client-side note.
func (l *Log) Notef(format string, args ...interface{}) Entry {
	return l.add(Note, fmt.Sprintf(format, args...))
}

func (l *Log) add(src Source, text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry{Seq: len(l.entries) + 1, At: l.now(), Source: src, Text: text}
	l.entries = append(l.entries, e)
	return e
}

// Len returns the number of entries recorded.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a copy of all entries in arrival order.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Inbound returns only push-channel entries, in arrival order.
func (l *Log) Inbound() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if e.Source == Inbound {
			out = append(out, e)
		}
	}
	return out
}

// Newest returns up to n entries, newest first. n <= 0 returns all.
func (l *Log) Newest(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}
