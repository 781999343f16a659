package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/server-sentinel/sentinel/internal/channel"
	"github.com/server-sentinel/sentinel/internal/config"
	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
)

func TestNewBackoff(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		b := newBackoff(config.ReconnectConfig{Strategy: config.StrategyFixed, Initial: 3 * time.Second})
		for i := 0; i < 3; i++ {
			assert.Equal(t, 3*time.Second, b.Next())
		}
	})

	t.Run("exponential", func(t *testing.T) {
		b := newBackoff(config.ReconnectConfig{
			Strategy:   config.StrategyExponential,
			Initial:    time.Second,
			Max:        4 * time.Second,
			Multiplier: 2,
		})
		exp, ok := b.(*channel.ExponentialBackoff)
		require.True(t, ok)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second},
			[]time.Duration{exp.Next(), exp.Next(), exp.Next(), exp.Next()})
	})
}

// withFlags sets the global --config and --url values for one test.
func withFlags(t *testing.T, cfg, url string) {
	t.Helper()
	oldCfg, oldURL := cfgFile, urlFlag
	cfgFile, urlFlag = cfg, url
	t.Cleanup(func() { cfgFile, urlFlag = oldCfg, oldURL })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentinel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_URLFlagOverrides(t *testing.T) {
	path := writeConfig(t, "url: http://from-file:8080\nrun:\n  timeout: 2m\n")
	withFlags(t, path, "https://from-flag.example")

	cfg, gotPath, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, "https://from-flag.example", cfg.URL)
	assert.Equal(t, 2*time.Minute, cfg.Run.Timeout)
}

func TestLoadConfig_InvalidURL(t *testing.T) {
	path := writeConfig(t, "url: http://localhost:8080\n")
	withFlags(t, path, "ftp://nope")

	_, _, err := loadConfig()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestNewWorkflow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.URL = "https://monitor.example:8443"
	cfg.Run.Timeout = time.Minute

	log := logger.NewBufferLogger()
	w, err := newWorkflow(cfg, "", WorkflowOptions{Logger: log})
	require.NoError(t, err)

	assert.Equal(t, "https://monitor.example:8443", w.Client.BaseURL())
	assert.True(t, log.Contains("backend https://monitor.example:8443 (config: built-in defaults)"))
	require.NotNil(t, w.Channel)
	assert.Equal(t, "wss://monitor.example:8443/ws/run", w.Channel.URL())
	assert.Equal(t, channel.Connecting, w.Session.ChannelState(), "not started yet")
	assert.Equal(t, time.Minute, w.Session.Runs.Timeout())
}

func TestNewWorkflow_NoChannel(t *testing.T) {
	cfg := config.DefaultConfig()

	w, err := newWorkflow(cfg, "", WorkflowOptions{NoChannel: true})
	require.NoError(t, err)

	assert.Nil(t, w.Channel)
	assert.Equal(t, channel.Closed, w.Session.ChannelState())
	assert.Equal(t, cfg.Run.Timeout, w.Session.Runs.Timeout())
}
