package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Reconnect strategies.
const (
	StrategyExponential = "exponential"
	StrategyFixed       = "fixed"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config represents the complete sentinel.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// URL is the backend base URL, e.g. http://localhost:8080.
	URL string `yaml:"url" mapstructure:"url"`

	// WSPath is the push channel path appended to URL.
	WSPath string `yaml:"ws_path" mapstructure:"ws_path"`

	Reconnect ReconnectConfig `yaml:"reconnect" mapstructure:"reconnect"`
	Pull      PullConfig      `yaml:"pull" mapstructure:"pull"`
	Run       RunConfig       `yaml:"run" mapstructure:"run"`
	UI        UIConfig        `yaml:"ui" mapstructure:"ui"`
}

// ReconnectConfig controls how the push channel redials after a close.
type ReconnectConfig struct {
	// Strategy is "exponential" (default) or "fixed".
	Strategy string `yaml:"strategy" mapstructure:"strategy"`

	// Initial is the first delay, and the only delay for "fixed".
	Initial time.Duration `yaml:"initial" mapstructure:"initial"`

	// Max caps the exponential delay.
	Max time.Duration `yaml:"max" mapstructure:"max"`

	Multiplier float64 `yaml:"multiplier" mapstructure:"multiplier"`

	// Jitter spreads each delay by ± this fraction (0 to 1).
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`
}

// PullConfig controls snapshot pulls.
type PullConfig struct {
	// Timeout bounds each GET request. Zero means no client-side timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// RunConfig controls run orchestration.
type RunConfig struct {
	// Timeout abandons a run whose completion marker never arrives.
	// Zero (the default) waits forever.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// CompletionMarker is the phrase that ends a run.
	CompletionMarker string `yaml:"completion_marker" mapstructure:"completion_marker"`
}

// UIConfig controls the dashboard.
type UIConfig struct {
	// Theme is the initial theme when no preference has been saved.
	Theme string `yaml:"theme" mapstructure:"theme"`

	// LogLines is how many event log entries the log panel shows.
	LogLines int `yaml:"log_lines" mapstructure:"log_lines"`

	// HistorySize is the number of pulls kept per server for sparklines.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	// StateFile stores client preferences. Empty uses ~/.config/sentinel/state.yaml.
	StateFile string `yaml:"state_file" mapstructure:"state_file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		URL:     "http://localhost:8080",
		WSPath:  "/ws/run",
		Reconnect: ReconnectConfig{
			Strategy:   StrategyExponential,
			Initial:    3 * time.Second,
			Max:        30 * time.Second,
			Multiplier: 2,
			Jitter:     0.2,
		},
		Pull: PullConfig{
			Timeout: 10 * time.Second,
		},
		Run: RunConfig{
			Timeout:          0,
			CompletionMarker: "🏁 Process complete.",
		},
		UI: UIConfig{
			Theme:       ThemeDark,
			LogLines:    200,
			HistorySize: 30,
		},
	}
}
