package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/server-sentinel/sentinel/internal/channel"
	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/run"
	"github.com/server-sentinel/sentinel/internal/session"
	"github.com/server-sentinel/sentinel/internal/ui"
)

// timeoutCheckInterval is how often the run timeout is evaluated.
const timeoutCheckInterval = time.Second

// ExitRunIncomplete is the exit code of a run that was submitted but never
// completed: it timed out or was abandoned after a lost connection.
const ExitRunIncomplete = 2

// RunOptions holds options for a headless run.
type RunOptions struct {
	Targets     run.Targets
	Timeout     time.Duration // Bound on the whole wait (0 means none)
	PullTimeout time.Duration // Bound on each pull
	Out         io.Writer     // Progress output
}

// RunResult describes a finished headless run.
type RunResult struct {
	Run      run.Run
	Rows     []ui.ReportRow
	Statuses map[string]string // Last progress line per server
	Duration time.Duration
}

// RunOutput represents the JSON output for the run command.
type RunOutput struct {
	Run      int               `json:"run"`
	Targets  string            `json:"targets"`
	Duration string            `json:"duration"`
	Progress map[string]string `json:"progress,omitempty"`
	Servers  []ServerStatus    `json:"servers"`
}

// runCommand resolves targets, runs a health check and prints the report.
func runCommand(args []string, flags RunFlags) error {
	if err := ValidateTargets(flags.All, args); err != nil {
		return err
	}
	timeout, err := ParseTimeout(flags.Timeout)
	if err != nil {
		return err
	}

	w, err := SetupWorkflow(WorkflowOptions{Logger: commandLogger("[run]")})
	if err != nil {
		return err
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), pullBudget(w.Config.Pull.Timeout))
	err = w.Session.LoadDirectory(loadCtx)
	cancelLoad()
	if err != nil {
		return err
	}

	targets, err := resolveTargets(w.Session, args, flags.All)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Channel.Run(ctx) //nolint:errcheck // returns ctx.Err() on shutdown

	var out io.Writer = os.Stdout
	if flags.JSON {
		out = io.Discard
	}

	result, err := executeRun(ctx, w.Session, w.Channel.Events(), RunOptions{
		Targets:     targets,
		Timeout:     timeout,
		PullTimeout: w.Config.Pull.Timeout,
		Out:         out,
	})
	if err != nil {
		return err
	}

	if flags.JSON {
		return WriteJSONSuccess(os.Stdout, RunOutput{
			Run:      result.Run.ID,
			Targets:  result.Run.Targets.String(),
			Duration: result.Duration.Round(time.Millisecond).String(),
			Progress: result.Statuses,
			Servers:  toServerStatus(result.Rows),
		})
	}
	fmt.Fprint(os.Stdout, ui.RenderReportTable(result.Rows))
	return nil
}

// resolveTargets turns arguments into run targets. With no arguments and no
// --all, an interactive picker is shown on a terminal.
func resolveTargets(sess *session.Session, args []string, all bool) (run.Targets, error) {
	if all {
		return run.All(), nil
	}
	if len(args) > 0 {
		return run.Servers(args...), nil
	}
	if !ui.IsTerminal(os.Stdin) || !ui.IsTerminal(os.Stdout) {
		return run.Targets{}, errors.New(errors.ErrRun,
			"No servers selected.",
			"Name the servers to check, or use --all")
	}
	picked, err := ui.PickServers(sess.Directory.List())
	if err != nil {
		return run.Targets{}, err
	}
	return run.Servers(picked...), nil
}

// executeRun drives one run from a single loop: it waits for the push
// channel to open, submits, streams the event log to opts.Out until the
// completion marker arrives, then pulls the report for the targets.
// The directory must already be loaded.
func executeRun(ctx context.Context, sess *session.Session, events <-chan channel.Event, opts RunOptions) (*RunResult, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	pd := ui.NewPhaseDisplay(out)
	start := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(timeoutCheckInterval)
	defer ticker.Stop()

	printed := sess.Log.Len()
	flush := func() {
		entries := sess.Log.Entries()
		for _, e := range entries[printed:] {
			pd.RenderLine(e.At, e.Text)
		}
		printed = len(entries)
	}

	pd.RenderProgress("Connecting")
	var (
		current   run.Run
		submitted bool
	)

	for {
		select {
		case <-ctx.Done():
			if submitted {
				pd.RenderFailed("Run", time.Since(current.StartedAt), nil)
				return nil, errors.WithExitCode(errors.New(errors.ErrRun,
					fmt.Sprintf("Run %d timed out after %s", current.ID, opts.Timeout),
					"The backend may still be working; check 'sentinel status' later"), ExitRunIncomplete)
			}
			pd.RenderFailed("Connect", time.Since(start), nil)
			return nil, errors.WrapWithCode(ctx.Err(), errors.ErrChannel,
				"Couldn't open the push channel",
				"Check that the backend is running and url points at it")

		case <-ticker.C:
			if r, ok := sess.CheckTimeout(); ok {
				flush()
				return nil, errors.WithExitCode(errors.New(errors.ErrRun,
					fmt.Sprintf("Run %d timed out after %s", r.ID, sess.Runs.Timeout()),
					"Raise run.timeout in sentinel.yaml, or check the backend logs"), ExitRunIncomplete)
			}

		case ev, ok := <-events:
			if !ok {
				return nil, errors.New(errors.ErrChannel,
					"Push channel shut down",
					"")
			}
			outcome := sess.HandleChannelEvent(ev)
			flush()

			if outcome.Abandoned {
				return nil, errors.WithExitCode(errors.New(errors.ErrRun,
					fmt.Sprintf("Run %d abandoned: the connection dropped while it was in progress", outcome.Run.ID),
					"Start the run again with 'sentinel run'"), ExitRunIncomplete)
			}

			if ev.Kind == channel.EventOpened && !submitted {
				pd.RenderSuccess("Connected", time.Since(start))
				r, err := sess.Submit(opts.Targets)
				if errors.IsCode(err, errors.ErrChannel) {
					// Closed again before the request went out; wait for the next open.
					pd.RenderProgress("Reconnecting")
					continue
				}
				if err != nil {
					pd.RenderFailed("Submit", 0, nil)
					return nil, err
				}
				current = r
				submitted = true
				pd.RenderProgress(fmt.Sprintf("Run %d on %s", r.ID, r.Targets))
				continue
			}

			if outcome.Completed {
				pd.RenderSuccess(fmt.Sprintf("Run %d complete", outcome.Run.ID), time.Since(outcome.Run.StartedAt))
				rows, err := pullReport(ctx, sess, opts)
				if err != nil {
					pd.RenderFailed("Refresh", 0, err)
					return nil, err
				}
				pd.Divider()
				return &RunResult{
					Run:      outcome.Run,
					Rows:     rows,
					Statuses: sess.Projector.Snapshot(),
					Duration: time.Since(start),
				}, nil
			}
		}
	}
}

// pullReport refreshes once and returns report rows for the run's targets.
func pullReport(ctx context.Context, sess *session.Session, opts RunOptions) ([]ui.ReportRow, error) {
	if opts.PullTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.PullTimeout)
		defer cancel()
	}
	if err := refreshOnce(ctx, sess); err != nil {
		return nil, err
	}

	names := opts.Targets.Names()
	if opts.Targets.IsAll() {
		names = sess.Directory.Names()
	}
	return reportRows(sess, names), nil
}
