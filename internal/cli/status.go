package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/server-sentinel/sentinel/internal/session"
	"github.com/server-sentinel/sentinel/internal/ui"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// StatusOutput represents the JSON output for the status command.
type StatusOutput struct {
	Servers   []ServerStatus `json:"servers"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

// ServerStatus is one directory entry with its latest report, if any.
type ServerStatus struct {
	Name   string            `json:"name"`
	Host   string            `json:"host"`
	User   string            `json:"user"`
	Port   int               `json:"port"`
	Online *bool             `json:"online,omitempty"`
	Report *sdk.ServerReport `json:"report,omitempty"`
}

// ServersOutput represents the JSON output for the servers command.
type ServersOutput struct {
	Servers []sdk.Server `json:"servers"`
}

// statusCommand pulls the directory and latest report and prints them.
func statusCommand(jsonOut bool) error {
	w, err := SetupWorkflow(WorkflowOptions{NoChannel: true, Logger: commandLogger("[status]")})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pullBudget(w.Config.Pull.Timeout))
	defer cancel()

	if err := pullStatus(ctx, w.Session); err != nil {
		return err
	}
	return writeStatus(os.Stdout, w.Session, w.Session.Directory.Names(), jsonOut)
}

// serversCommand prints the backend's server directory.
func serversCommand(jsonOut bool) error {
	w, err := SetupWorkflow(WorkflowOptions{NoChannel: true, Logger: commandLogger("[servers]")})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pullBudget(w.Config.Pull.Timeout))
	defer cancel()

	if err := w.Session.LoadDirectory(ctx); err != nil {
		return err
	}

	servers := w.Session.Directory.List()
	if jsonOut {
		return WriteJSONSuccess(os.Stdout, ServersOutput{Servers: servers})
	}
	fmt.Println(ui.RenderServerTable(servers))
	return nil
}

// pullStatus loads the directory and applies one snapshot refresh.
func pullStatus(ctx context.Context, sess *session.Session) error {
	if err := sess.LoadDirectory(ctx); err != nil {
		return err
	}
	return refreshOnce(ctx, sess)
}

// refreshOnce issues, fetches and applies a single refresh.
func refreshOnce(ctx context.Context, sess *session.Session) error {
	ticket := sess.IssueRefresh()
	_, err := sess.ApplyRefresh(sess.FetchRefresh(ctx, ticket))
	return err
}

// reportRows pairs each named server with its latest report. Names missing
// from the directory are skipped.
func reportRows(sess *session.Session, names []string) []ui.ReportRow {
	rows := make([]ui.ReportRow, 0, len(names))
	for _, name := range names {
		srv, ok := sess.Directory.Get(name)
		if !ok {
			continue
		}
		row := ui.ReportRow{Server: srv}
		if r, ok := sess.Report(name); ok {
			row.Report = &r
		}
		rows = append(rows, row)
	}
	return rows
}

// toServerStatus converts report rows to their JSON form.
func toServerStatus(rows []ui.ReportRow) []ServerStatus {
	out := make([]ServerStatus, 0, len(rows))
	for _, row := range rows {
		st := ServerStatus{
			Name:   row.Server.Name,
			Host:   row.Server.Host,
			User:   row.Server.User,
			Port:   row.Server.Port,
			Report: row.Report,
		}
		if row.Report != nil {
			online := row.Report.IsOnline
			st.Online = &online
		}
		out = append(out, st)
	}
	return out
}

// writeStatus renders the report for names as a table or a JSON envelope.
func writeStatus(w io.Writer, sess *session.Session, names []string, jsonOut bool) error {
	rows := reportRows(sess, names)

	if jsonOut {
		out := StatusOutput{Servers: toServerStatus(rows)}
		if at := sess.Store.UpdatedAt(); !at.IsZero() {
			out.UpdatedAt = &at
		}
		return WriteJSONSuccess(w, out)
	}

	fmt.Fprint(w, ui.RenderReportTable(rows))
	if at := sess.Store.UpdatedAt(); !at.IsZero() {
		fmt.Fprintf(w, "\n%s\n", ui.MutedStyle().Render("Updated "+ui.FormatAgo(at)))
	}
	return nil
}

// pullBudget bounds a directory load plus one refresh.
func pullBudget(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return time.Minute
	}
	return 2 * timeout
}
