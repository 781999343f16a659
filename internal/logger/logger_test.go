package logger

import (
	"bytes"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		expectLog bool
	}{
		{name: "logs when SENTINEL_DEBUG is set", envValue: "1", expectLog: true},
		{name: "logs when SENTINEL_DEBUG is any value", envValue: "true", expectLog: true},
		{name: "does not log when SENTINEL_DEBUG is empty", envValue: "", expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			t.Setenv(DebugEnv, tt.envValue)

			l := NewEnvLogger("[test]")
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "[test] DEBUG: test message arg")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	buf := captureLog(t)

	l := NewEnvLogger("[channel]")
	l.Info("connected to %s", "ws://localhost")
	l.Warn("closed")
	l.Error("dial failed")

	out := buf.String()
	assert.Contains(t, out, "[channel] connected to ws://localhost")
	assert.Contains(t, out, "[channel] WARN: closed")
	assert.Contains(t, out, "[channel] ERROR: dial failed")
}

func TestEnvLogger_NoPrefix(t *testing.T) {
	buf := captureLog(t)

	NewEnvLogger("").Info("plain")
	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), " plain\n ")
}

func TestNoopLogger(t *testing.T) {
	buf := captureLog(t)

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String(), "noop logger should not produce any output")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	msgs := l.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug msg"}, msgs[0])
	assert.Equal(t, LogMessage{Level: "error", Message: "error msg"}, msgs[3])

	assert.True(t, l.HasLevel("warn"))
	assert.Equal(t, 1, l.Count("info"))
	assert.True(t, l.Contains("warn msg"))
	assert.False(t, l.Contains("missing"))

	l.Clear()
	assert.Empty(t, l.Messages())
	assert.False(t, l.HasLevel("warn"))
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Info("message %d", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, l.Count("info"))
}

func TestDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	buf := NewBufferLogger()
	SetDefault(buf)
	assert.Equal(t, buf, Default())

	assert.Equal(t, buf, OrDefault(nil))
	other := Noop()
	assert.Equal(t, other, OrDefault(other))
}
