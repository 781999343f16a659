package dashboard

import (
	"time"

	"github.com/server-sentinel/sentinel/internal/channel"
	"github.com/server-sentinel/sentinel/internal/snapshot"
)

// channelEventMsg carries one push-channel transition into the Update loop.
type channelEventMsg channel.Event

// channelDoneMsg signals the connection manager has stopped.
type channelDoneMsg struct{}

// directoryMsg reports the outcome of the server list pull.
type directoryMsg struct {
	err error
}

// refreshMsg carries a fetched report snapshot back to be applied.
type refreshMsg struct {
	resp snapshot.Response
}

// tickMsg drives timeout checks and relative timestamps.
type tickMsg time.Time

// themeSavedMsg reports the outcome of persisting the theme preference.
type themeSavedMsg struct {
	theme string
	err   error
}
