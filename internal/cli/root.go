package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/internal/ui"
)

// Global flags
var (
	cfgFile string
	urlFlag string
	noColor bool
	debug   bool
)

// rootCmd is the base command. Without a subcommand it opens the dashboard.
var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Terminal client for the Server Sentinel fleet health-check backend",
	Long: `sentinel shows the servers a Server Sentinel backend monitors, starts
health-check runs over its push channel, streams their progress, and renders
the resulting CPU, memory, swap and process reports.

Run without a subcommand to open the interactive dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.ConfigureColors(noColor)
		if debug {
			os.Setenv(logger.DebugEnv, "1") //nolint:errcheck // best effort
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sentinel.yaml, then ~/.config/sentinel/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "backend base URL (overrides config and SENTINEL_URL)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging (the dashboard logs to sentinel-debug.log)")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// URL returns the --url flag value.
func URL() string {
	return urlFlag
}

// Debug reports whether --debug was given.
func Debug() bool {
	return debug
}

// Execute runs the root command. Errors are printed once and the process
// exits non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(handleError(err))
	}
}

// handleError prints err the way the user should see it and returns the exit code.
func handleError(err error) int {
	code := 1
	var exitErr *errors.ExitError
	if stderrors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Err == nil {
			return code
		}
	}

	if MachineMode() {
		WriteJSONFromError(os.Stdout, err) //nolint:errcheck // stdout is all we have
		return code
	}

	var sErr *errors.Error
	if stderrors.As(err, &sErr) {
		fmt.Fprint(os.Stderr, ui.ErrorStyle().Render(sErr.Error()))
		return code
	}
	fmt.Fprintln(os.Stderr, ui.ErrorStyle().Render(ui.SymbolFail+" "+err.Error()))
	return code
}
