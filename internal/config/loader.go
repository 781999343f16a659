package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/server-sentinel/sentinel/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "sentinel.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/sentinel"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// StateFileName is the default preferences file inside GlobalConfigDir.
	StateFileName = "state.yaml"
	// EnvPrefix prefixes environment overrides, e.g. SENTINEL_URL.
	EnvPrefix = "SENTINEL"
)

// Load reads config from path, merged over defaults and under environment
// overrides. An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Create sentinel.yaml, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. sentinel.yaml in current directory
// 3. ~/.config/sentinel/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		explicit = ExpandTilde(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault finds and loads the config, falling back to defaults (plus
// environment overrides) when no file exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your config"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	cfg.UI.StateFile = ExpandTilde(cfg.UI.StateFile)

	return cfg, nil
}

// setDefaults registers every key so env overrides apply even when the key
// is absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("url", d.URL)
	v.SetDefault("ws_path", d.WSPath)
	v.SetDefault("reconnect.strategy", d.Reconnect.Strategy)
	v.SetDefault("reconnect.initial", d.Reconnect.Initial.String())
	v.SetDefault("reconnect.max", d.Reconnect.Max.String())
	v.SetDefault("reconnect.multiplier", d.Reconnect.Multiplier)
	v.SetDefault("reconnect.jitter", d.Reconnect.Jitter)
	v.SetDefault("pull.timeout", d.Pull.Timeout.String())
	v.SetDefault("run.timeout", d.Run.Timeout.String())
	v.SetDefault("run.completion_marker", d.Run.CompletionMarker)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.log_lines", d.UI.LogLines)
	v.SetDefault("ui.history_size", d.UI.HistorySize)
	v.SetDefault("ui.state_file", d.UI.StateFile)
}

// DefaultStateFile returns ~/.config/sentinel/state.yaml.
func DefaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return StateFileName
	}
	return filepath.Join(home, GlobalConfigDir, StateFileName)
}

// StatePath returns the configured state file or the default location.
func (c *Config) StatePath() string {
	if c.UI.StateFile != "" {
		return c.UI.StateFile
	}
	return DefaultStateFile()
}
