package cli

import (
	"github.com/server-sentinel/sentinel/internal/channel"
	"github.com/server-sentinel/sentinel/internal/config"
	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/internal/session"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// WorkflowOptions configures workflow setup behavior.
type WorkflowOptions struct {
	Logger    logger.Logger // Session and channel logger
	NoChannel bool          // Pull-only commands skip the push channel
}

// WorkflowContext holds what a command needs to talk to the backend.
type WorkflowContext struct {
	Config     *config.Config
	ConfigPath string
	Client     *sdk.Client
	Channel    *channel.Manager
	Session    *session.Session
}

// commandLogger returns an env logger under --debug and a no-op logger
// otherwise, so headless output stays clean.
func commandLogger(prefix string) logger.Logger {
	if Debug() {
		return logger.NewEnvLogger(prefix)
	}
	return logger.Noop()
}

// loadConfig finds and validates the config, applying the --url override.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, "", err
	}
	if URL() != "" {
		cfg.URL = URL()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newBackoff maps the reconnect config onto a channel backoff policy.
func newBackoff(r config.ReconnectConfig) channel.Backoff {
	if r.Strategy == config.StrategyFixed {
		return channel.FixedBackoff(r.Initial)
	}
	return channel.NewExponentialBackoff(r.Initial, r.Max, r.Multiplier, r.Jitter)
}

// SetupWorkflow loads config and builds the pull client, push channel and
// session. The channel is not started; the caller runs it.
func SetupWorkflow(opts WorkflowOptions) (*WorkflowContext, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newWorkflow(cfg, path, opts)
}

func newWorkflow(cfg *config.Config, path string, opts WorkflowOptions) (*WorkflowContext, error) {
	l := logger.OrDefault(opts.Logger)
	w := &WorkflowContext{
		Config:     cfg,
		ConfigPath: path,
		Client:     sdk.NewClient(cfg.URL, cfg.Pull.Timeout),
	}
	source := path
	if source == "" {
		source = "built-in defaults"
	}
	l.Debug("backend %s (config: %s)", w.Client.BaseURL(), source)

	sessOpts := session.Options{
		Backend:          w.Client,
		CompletionMarker: cfg.Run.CompletionMarker,
		RunTimeout:       cfg.Run.Timeout,
		HistorySize:      cfg.UI.HistorySize,
		Logger:           l,
	}

	if !opts.NoChannel {
		wsURL, err := w.Client.WebSocketURL(cfg.WSPath)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't derive the push channel URL from "+cfg.URL,
				"Check url and ws_path in sentinel.yaml")
		}
		w.Channel = channel.New(wsURL,
			channel.WithBackoff(newBackoff(cfg.Reconnect)),
			channel.WithLogger(l),
		)
		sessOpts.Channel = w.Channel
	}

	w.Session = session.New(sessOpts)
	return w, nil
}
