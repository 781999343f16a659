package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/server-sentinel/sentinel/internal/eventlog"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/internal/protocol"
)

func newProjector() (*Projector, *eventlog.Log, *logger.BufferLogger) {
	log := eventlog.New()
	buf := logger.NewBufferLogger()
	return NewProjector(log, protocol.Parser{}, buf), log, buf
}

func TestApply_LastWriteWins(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   map[string]string
	}{
		{
			name:   "single server",
			events: []string{"[srv1] checking...", "[srv1] done"},
			want:   map[string]string{"srv1": "done"},
		},
		{
			name:   "interleaved servers",
			events: []string{"[a] one", "[b] two", "[a] three", "info line", "[b] four"},
			want:   map[string]string{"a": "three", "b": "four"},
		},
		{
			name:   "unknown names are still projected",
			events: []string{"[ghost] hello"},
			want:   map[string]string{"ghost": "hello"},
		},
		{
			name:   "no status lines",
			events: []string{"🚀 starting", "❌ oops"},
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, log, _ := newProjector()
			for _, e := range tt.events {
				p.Apply(e)
			}
			assert.Equal(t, tt.want, p.Snapshot())
			assert.Equal(t, len(tt.events), log.Len(), "every message is logged verbatim")
		})
	}
}

func TestApply_CompletionOncePerArmedRun(t *testing.T) {
	p, _, buf := newProjector()
	p.Arm()

	res := p.Apply("🏁 Process complete.")
	assert.True(t, res.Completed)
	assert.False(t, res.Anomaly)
	assert.False(t, p.isArmed())

	res = p.Apply("🏁 Process complete.")
	assert.False(t, res.Completed)
	assert.True(t, res.Anomaly)
	assert.True(t, buf.HasLevel("warn"))
	assert.True(t, buf.Contains("PROTOCOL"))
}

func TestApply_UnarmedTerminatorIsAnomaly(t *testing.T) {
	p, log, _ := newProjector()

	res := p.Apply("🏁 Process complete.")
	assert.False(t, res.Completed)
	assert.True(t, res.Anomaly)
	assert.Equal(t, 1, log.Len())
}

func TestDisarm(t *testing.T) {
	p, _, _ := newProjector()
	p.Arm()
	p.Disarm()
	assert.False(t, p.Apply("🏁 Process complete.").Completed)
}

func TestApply_ReturnsEntryAndEvent(t *testing.T) {
	p, _, _ := newProjector()
	res := p.Apply("[srv1] ok")
	assert.Equal(t, "[srv1] ok", res.Entry.Text)
	assert.Equal(t, protocol.KindServerStatus, res.Event.Kind)
	assert.Equal(t, "srv1", res.Event.Server)
}

func TestStatus(t *testing.T) {
	p, _, _ := newProjector()
	_, ok := p.Status("srv1")
	assert.False(t, ok)
	assert.Equal(t, "Awaiting task...", p.StatusOr("srv1", "Awaiting task..."))

	p.Apply("[srv1] ✅ Healthy")
	s, ok := p.Status("srv1")
	require.True(t, ok)
	assert.Equal(t, "✅ Healthy", s)
	assert.Equal(t, "✅ Healthy", p.StatusOr("srv1", "Awaiting task..."))
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	p, _, _ := newProjector()
	p.Apply("[srv1] ok")
	snap := p.Snapshot()
	snap["srv1"] = "mutated"
	s, _ := p.Status("srv1")
	assert.Equal(t, "ok", s)
}
