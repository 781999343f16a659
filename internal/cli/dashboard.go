package cli

import (
	"context"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/server-sentinel/sentinel/internal/dashboard"
	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/internal/prefs"
	"github.com/server-sentinel/sentinel/internal/ui"
)

// debugLogFile receives log output while the dashboard owns the terminal.
const debugLogFile = "sentinel-debug.log"

// dashboardCommand starts the interactive fleet dashboard.
func dashboardCommand() error {
	if !ui.IsTerminal(os.Stdout) {
		return errors.New(errors.ErrConfig,
			"The dashboard needs an interactive terminal",
			"Use 'sentinel status' or 'sentinel run' when piping output")
	}

	// Stray log output would tear the alt screen.
	if Debug() {
		f, err := tea.LogToFile(debugLogFile, "sentinel")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't open the debug log",
				"Check that the current directory is writable")
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	w, err := SetupWorkflow(WorkflowOptions{Logger: logger.NewEnvLogger("[session]")})
	if err != nil {
		return err
	}

	store := prefs.NewStore(w.Config.StatePath())
	theme := w.Config.UI.Theme
	if p, err := store.Load(); err == nil && p.Theme != "" {
		theme = p.Theme
	} else if err != nil {
		log.Printf("prefs: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Channel.Run(ctx) //nolint:errcheck // returns ctx.Err() on shutdown

	model := dashboard.NewModel(dashboard.Options{
		Session:     w.Session,
		Events:      w.Channel.Events(),
		Prefs:       store,
		Theme:       theme,
		LogLines:    w.Config.UI.LogLines,
		PullTimeout: w.Config.Pull.Timeout,
		Logger:      logger.NewEnvLogger("[dashboard]"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
