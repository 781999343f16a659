package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/server-sentinel/sentinel/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sentinel only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade sentinel, or lower the version in sentinel.yaml")
	}

	if err := ValidateURL(cfg.URL); err != nil {
		return err
	}

	if cfg.WSPath != "" && !strings.HasPrefix(cfg.WSPath, "/") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("ws_path '%s' must start with '/'", cfg.WSPath),
			"Use an absolute path like /ws/run")
	}

	if err := validateReconnect(cfg.Reconnect); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'reconnect' section in your sentinel.yaml.")
	}

	if cfg.Pull.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"pull.timeout can't be negative",
			"Use 0 for no timeout, or a duration like 10s")
	}

	if err := validateRun(cfg.Run); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'run' section in your sentinel.yaml.")
	}

	if err := validateUI(cfg.UI); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'ui' section in your sentinel.yaml.")
	}

	return nil
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New(errors.ErrConfig,
			"No backend url configured",
			"Set 'url' in sentinel.yaml, SENTINEL_URL, or pass --url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Backend url '%s' isn't a valid URL", raw),
			"Use something like http://localhost:8080")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Backend url '%s' must use http or https", raw),
			"Use something like http://localhost:8080")
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Backend url '%s' has no host", raw),
			"Use something like http://localhost:8080")
	}
	return nil
}

func validateReconnect(r ReconnectConfig) error {
	switch r.Strategy {
	case StrategyExponential, StrategyFixed:
	default:
		return fmt.Errorf("reconnect.strategy '%s' is not supported (use 'exponential' or 'fixed')", r.Strategy)
	}

	if r.Initial <= 0 {
		return fmt.Errorf("reconnect.initial must be positive, got %s", r.Initial)
	}

	if r.Strategy == StrategyFixed {
		return nil
	}

	if r.Max < r.Initial {
		return fmt.Errorf("reconnect.max (%s) must be at least reconnect.initial (%s)", r.Max, r.Initial)
	}
	if r.Multiplier < 1 {
		return fmt.Errorf("reconnect.multiplier must be at least 1, got %g", r.Multiplier)
	}
	if r.Jitter < 0 || r.Jitter > 1 {
		return fmt.Errorf("reconnect.jitter must be between 0 and 1, got %g", r.Jitter)
	}
	return nil
}

func validateRun(r RunConfig) error {
	if r.Timeout < 0 {
		return fmt.Errorf("run.timeout can't be negative (use 0 to wait forever)")
	}
	if strings.TrimSpace(r.CompletionMarker) == "" {
		return fmt.Errorf("run.completion_marker can't be empty")
	}
	return nil
}

func validateUI(u UIConfig) error {
	switch u.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("ui.theme '%s' is not supported (use 'dark' or 'light')", u.Theme)
	}
	if u.LogLines < 1 {
		return fmt.Errorf("ui.log_lines must be at least 1, got %d", u.LogLines)
	}
	if u.HistorySize < 1 {
		return fmt.Errorf("ui.history_size must be at least 1, got %d", u.HistorySize)
	}
	return nil
}
