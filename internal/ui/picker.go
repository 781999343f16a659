package ui

import (
	stderrors "errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// ServerOptions builds picker options labelled "name (host:port)".
func ServerOptions(servers []sdk.Server) []huh.Option[string] {
	options := make([]huh.Option[string], len(servers))
	for i, s := range servers {
		options[i] = huh.NewOption(s.Name+" ("+s.Address()+")", s.Name)
	}
	return options
}

// PickServers shows a multi-select of servers and returns the chosen names.
// An empty result means the user selected nothing.
func PickServers(servers []sdk.Server) ([]string, error) {
	if len(servers) == 0 {
		return nil, errors.New(errors.ErrRun,
			"No servers to pick from",
			"Check the backend's server configuration")
	}

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Which servers should be checked?").
				Description("space to toggle, enter to confirm").
				Options(ServerOptions(servers)...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return nil, errors.New(errors.ErrRun, "Cancelled", "")
		}
		return nil, errors.WrapWithCode(err, errors.ErrRun,
			"Server picker failed",
			"Pass server names as arguments, or use --all")
	}
	return selected, nil
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
