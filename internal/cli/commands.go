package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
)

// Command-specific flags
var (
	runFlags    RunFlags
	statusJSON  bool
	serversJSON bool
)

// dashboardCmd opens the interactive dashboard. It is also what the bare
// root command runs.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive fleet dashboard",
	Long: `Open the interactive dashboard: one card per server with its latest
CPU, memory and swap figures, live run progress, and a scrolling event log.

Keyboard shortcuts:
  up/k, down/j  Select server
  space         Mark server for the next run
  enter         Open server detail
  esc           Back to the dashboard
  r             Run marked servers (or the open server)
  a             Run all servers
  u             Refresh reports
  l             Toggle event log
  t             Toggle theme
  ?             Show help
  q / Ctrl+C    Quit

Examples:
  sentinel
  sentinel dashboard --url http://monitor.internal:8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand()
	},
}

// runCmd starts a health-check run without the dashboard
var runCmd = &cobra.Command{
	Use:   "run [server...]",
	Short: "Run a health check and print the report",
	Long: `Connect to the push channel, start a health-check run, stream its progress,
and print the resulting report once the backend signals completion.

With no server names and no --all, an interactive picker is shown.

Examples:
  sentinel run --all
  sentinel run web-1 db-1
  sentinel run --all --timeout 5m --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = runFlags.JSON
		return runCommand(args, runFlags)
	},
}

// statusCmd prints the latest report
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest report for every server",
	Long: `Pull the server directory and the most recent report and print them as a table.

Examples:
  sentinel status
  sentinel status --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = statusJSON
		return statusCommand(statusJSON)
	},
}

// serversCmd prints the server directory
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the servers the backend monitors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = serversJSON
		return serversCommand(serversJSON)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for sentinel.

Examples:
  # Bash
  sentinel completion bash > /etc/bash_completion.d/sentinel

  # Zsh
  sentinel completion zsh > "${fpath[1]}/_sentinel"

  # Fish
  sentinel completion fish > ~/.config/fish/completions/sentinel.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	AddRunFlags(runCmd, &runFlags)
	runCmd.ValidArgsFunction = completeServerNames

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output in JSON format")
	serversCmd.Flags().BoolVar(&serversJSON, "json", false, "output in JSON format")

	// Register all commands
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(completionCmd)
}

// completeServerNames offers directory names for `run` when the backend is
// reachable. Failures complete nothing.
func completeServerNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	w, err := SetupWorkflow(WorkflowOptions{NoChannel: true, Logger: logger.Noop()})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx, cancel := context.WithTimeout(context.Background(), pullBudget(w.Config.Pull.Timeout))
	defer cancel()
	if err := w.Session.LoadDirectory(ctx); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	taken := make(map[string]bool, len(args))
	for _, a := range args {
		taken[a] = true
	}
	var names []string
	for _, n := range w.Session.Directory.Names() {
		if !taken[n] {
			names = append(names, n)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
