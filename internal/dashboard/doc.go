// Package dashboard implements the interactive fleet dashboard.
//
// The dashboard shows one card per server from the directory, the status
// label the status projector last recorded for it, and the metrics of the
// latest pulled report. A detail view shows a single server; an event log
// panel shows the push channel's messages, newest first.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: navigation, selection, notices and theme. All fleet state lives
//     in a session.Session and is re-read on every render.
//   - Update: the only place session state is mutated.
//   - View: renders the current navigation to a string.
//
// # Message Flow
//
//  1. waitForEvent blocks on the connection manager's event stream and
//     delivers one channelEventMsg at a time.
//  2. Update hands each event to Session.HandleChannelEvent.
//  3. When a run completes, OnRunCompleted takes a refresh ticket and
//     fetches the latest report in a command goroutine.
//  4. refreshMsg applies the response in ticket order; an open detail view
//     is shown again with the new data.
//
// Keys that start a run are ignored with a notice while a run is in flight.
package dashboard
