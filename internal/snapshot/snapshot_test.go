package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sentinelerrors "github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

type fakeBackend struct {
	mu      sync.Mutex
	servers []sdk.Server
	reports []sdk.ServerReport
	err     error
	calls   int
}

func (b *fakeBackend) ListServers(ctx context.Context) ([]sdk.Server, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return b.servers, nil
}

func (b *fakeBackend) LatestReport(ctx context.Context) ([]sdk.ServerReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.reports, nil
}

func (b *fakeBackend) set(reports []sdk.ServerReport, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = reports
	b.err = err
}

func TestDirectory_Load(t *testing.T) {
	b := &fakeBackend{servers: []sdk.Server{
		{Name: "srv1", Host: "10.0.0.1", User: "root", Port: 22},
		{Name: "srv2", Host: "10.0.0.2", User: "ops", Port: 22},
		{Name: "srv1", Host: "duplicate"},
		{Name: ""},
	}}
	d := NewDirectory(b)
	assert.False(t, d.Loaded())

	require.NoError(t, d.Load(context.Background()))
	assert.True(t, d.Loaded())
	assert.Equal(t, []string{"srv1", "srv2"}, d.Names())
	assert.Equal(t, 2, d.Len())

	s, ok := d.Get("srv1")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", s.Host)
	assert.True(t, d.Has("srv2"))
	assert.False(t, d.Has("ghost"))
}

func TestDirectory_LoadFailure(t *testing.T) {
	b := &fakeBackend{err: errors.New("connection refused")}
	d := NewDirectory(b)

	err := d.Load(context.Background())
	require.Error(t, err)
	assert.True(t, sentinelerrors.IsCode(err, sentinelerrors.ErrPull))
	assert.False(t, d.Loaded())
	assert.Empty(t, d.List())
}

func TestStaticDirectory(t *testing.T) {
	d := NewStaticDirectory([]sdk.Server{{Name: "a"}})
	assert.True(t, d.Loaded())
	assert.True(t, d.Has("a"))
	assert.Error(t, d.Load(context.Background()))
	assert.True(t, d.Has("a"))
}

func newStore(b *fakeBackend, opts ...StoreOption) *Store {
	return NewStore(b, append([]StoreOption{WithStoreLogger(logger.Noop())}, opts...)...)
}

func TestStore_RefreshReplacesWholesale(t *testing.T) {
	b := &fakeBackend{}
	s := newStore(b)

	b.set([]sdk.ServerReport{{ServerName: "srv1", CPUUsage: 10}, {ServerName: "srv2", CPUUsage: 20}}, nil)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 2, s.Len())

	b.set([]sdk.ServerReport{{ServerName: "srv2", CPUUsage: 25}}, nil)
	require.NoError(t, s.Refresh(context.Background()))

	_, ok := s.Lookup("srv1")
	assert.False(t, ok, "servers missing from the new pull must not show old data")

	r, ok := s.Lookup("srv2")
	require.True(t, ok)
	assert.InDelta(t, 25.0, r.CPUUsage, 0.001)
}

func TestStore_LookupMissingIsExplicit(t *testing.T) {
	s := newStore(&fakeBackend{})
	r, ok := s.Lookup("srv1")
	assert.False(t, ok)
	assert.Equal(t, sdk.ServerReport{}, r)
	assert.Equal(t, Ticket(0), s.Version())
}

func TestStore_FailedRefreshPreservesLookups(t *testing.T) {
	b := &fakeBackend{}
	s := newStore(b)

	b.set([]sdk.ServerReport{
		{ServerName: "srv1", IsOnline: true, CPUUsage: 12.5, MemUsedMB: 100, MemTotalMB: 200, TopProcesses: "a\nb"},
		{ServerName: "srv2", IsOnline: false, Error: "timeout"},
	}, nil)
	require.NoError(t, s.Refresh(context.Background()))

	before := map[string]sdk.ServerReport{}
	for _, name := range []string{"srv1", "srv2", "srv3"} {
		if r, ok := s.Lookup(name); ok {
			before[name] = r
		}
	}
	version := s.Version()

	b.set(nil, errors.New("502 bad gateway"))
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, sentinelerrors.IsCode(err, sentinelerrors.ErrPull))

	for _, name := range []string{"srv1", "srv2", "srv3"} {
		r, ok := s.Lookup(name)
		want, had := before[name]
		assert.Equal(t, had, ok, name)
		assert.Equal(t, want, r, name)
	}
	assert.Equal(t, version, s.Version())
}

func TestStore_DropsOutOfOrderResponses(t *testing.T) {
	s := newStore(&fakeBackend{})

	older := s.Issue()
	newer := s.Issue()

	applied, err := s.Apply(Response{Ticket: newer, Reports: []sdk.ServerReport{{ServerName: "srv1", CPUUsage: 99}}})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = s.Apply(Response{Ticket: older, Reports: []sdk.ServerReport{{ServerName: "srv1", CPUUsage: 1}}})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, s.Dropped())

	r, _ := s.Lookup("srv1")
	assert.InDelta(t, 99.0, r.CPUUsage, 0.001)
	assert.Equal(t, newer, s.Version())
}

func TestStore_FailedNewerDoesNotBlockOlder(t *testing.T) {
	s := newStore(&fakeBackend{})

	older := s.Issue()
	newer := s.Issue()

	_, err := s.Apply(Response{Ticket: newer, Err: errors.New("boom")})
	require.Error(t, err)

	applied, err := s.Apply(Response{Ticket: older, Reports: []sdk.ServerReport{{ServerName: "srv1"}}})
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestStore_OnReplace(t *testing.T) {
	b := &fakeBackend{}
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var got []Snapshot
	s := newStore(b,
		OnReplace(func(snap Snapshot) { got = append(got, snap) }),
		WithStoreClock(func() time.Time { return at }),
	)

	b.set([]sdk.ServerReport{{ServerName: "b"}, {ServerName: "a"}}, nil)
	require.NoError(t, s.Refresh(context.Background()))

	b.set(nil, errors.New("down"))
	require.Error(t, s.Refresh(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, Ticket(1), got[0].Version)
	assert.Equal(t, at, got[0].UpdatedAt)
	require.Len(t, got[0].Reports, 2)
	assert.Equal(t, "b", got[0].Reports[0].ServerName, "pull order kept")
	assert.Equal(t, at, s.UpdatedAt())
}

func TestStore_ConcurrentReaders(t *testing.T) {
	b := &fakeBackend{}
	s := newStore(b)

	full := []sdk.ServerReport{{ServerName: "a"}, {ServerName: "b"}, {ServerName: "c"}}
	b.set(full, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap := s.Snapshot()
				assert.Contains(t, []int{0, 3}, len(snap.Reports), "readers never see a partial set")
			}
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Refresh(context.Background()))
	}
	wg.Wait()
}
