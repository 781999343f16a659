package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/server-sentinel/sentinel/internal/errors"
)

// RunFlags holds the flags of the run command.
type RunFlags struct {
	All     bool
	Timeout string
	JSON    bool
}

// AddRunFlags registers --all, --timeout and --json on a command.
func AddRunFlags(cmd *cobra.Command, flags *RunFlags) {
	cmd.Flags().BoolVar(&flags.All, "all", false, "check every configured server")
	cmd.Flags().StringVar(&flags.Timeout, "timeout", "", "give up waiting for completion after this long (e.g., 90s, 5m)")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "print the final report as JSON")
}

// ValidateTargets checks that --all and explicit server names are not used together.
func ValidateTargets(all bool, names []string) error {
	if all && len(names) > 0 {
		return errors.New(errors.ErrConfig,
			"--all and server names cannot be used together",
			"Use --all to check every server, or name the servers to check, but not both.")
	}
	return nil
}

// ParseTimeout parses a timeout flag into a duration.
// Returns zero duration if the flag is empty.
func ParseTimeout(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid timeout", flag),
			"Try something like 90s, 5m, or 1m30s.")
	}
	if duration < 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Timeout can't be negative (%s)", flag),
			"Use a positive duration, or leave it out to wait indefinitely.")
	}
	return duration, nil
}
