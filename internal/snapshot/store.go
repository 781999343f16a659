package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/internal/logger"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// ReportFetcher pulls the latest report collection.
type ReportFetcher interface {
	LatestReport(ctx context.Context) ([]sdk.ServerReport, error)
}

// Ticket orders refreshes by the time they were issued.
type Ticket uint64

// Response is the outcome of one pull, tagged with the ticket it was issued under.
type Response struct {
	Ticket  Ticket
	Reports []sdk.ServerReport
	Err     error
}

// Snapshot is an immutable view of one applied pull.
type Snapshot struct {
	Version   Ticket
	UpdatedAt time.Time
	Reports   []sdk.ServerReport
}

// Store holds the latest report collection. Each applied pull replaces the
// whole collection; a failed pull leaves it untouched. A response issued
// before one that has already been applied is dropped.
type Store struct {
	fetcher   ReportFetcher
	log       logger.Logger
	now       func() time.Time
	onReplace func(Snapshot)

	mu        sync.RWMutex
	issued    Ticket
	version   Ticket
	updatedAt time.Time
	order     []string
	reports   map[string]sdk.ServerReport
	dropped   int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// OnReplace registers fn to run after each applied snapshot.
func OnReplace(fn func(Snapshot)) StoreOption {
	return func(s *Store) { s.onReplace = fn }
}

func WithStoreLogger(l logger.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(fetcher ReportFetcher, opts ...StoreOption) *Store {
	s := &Store{
		fetcher: fetcher,
		log:     logger.NewEnvLogger("[snapshot]"),
		now:     time.Now,
		reports: map[string]sdk.ServerReport{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue takes the next refresh ticket.
func (s *Store) Issue() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Fetch performs the pull for t without touching stored data.
func (s *Store) Fetch(ctx context.Context, t Ticket) Response {
	reports, err := s.fetcher.LatestReport(ctx)
	return Response{Ticket: t, Reports: reports, Err: err}
}

// Apply installs a fetched response. It returns false without error when the
// response is stale, and a PULL error when the fetch failed.
func (s *Store) Apply(resp Response) (bool, error) {
	if resp.Err != nil {
		s.log.Warn("refresh %d failed: %v", resp.Ticket, resp.Err)
		return false, errors.WrapWithCode(resp.Err, errors.ErrPull,
			"Couldn't refresh the latest report",
			"Showing the last good data; press u to retry")
	}

	order := make([]string, 0, len(resp.Reports))
	reports := make(map[string]sdk.ServerReport, len(resp.Reports))
	for _, r := range resp.Reports {
		if _, seen := reports[r.ServerName]; !seen {
			order = append(order, r.ServerName)
		}
		reports[r.ServerName] = r
	}

	s.mu.Lock()
	if resp.Ticket <= s.version {
		s.dropped++
		applied := s.version
		s.mu.Unlock()
		s.log.Debug("dropping stale refresh %d (applied %d)", resp.Ticket, applied)
		return false, nil
	}
	s.version = resp.Ticket
	s.updatedAt = s.now()
	s.order = order
	s.reports = reports
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.onReplace != nil {
		s.onReplace(snap)
	}
	return true, nil
}

// Refresh issues, fetches and applies in one call.
func (s *Store) Refresh(ctx context.Context) error {
	_, err := s.Apply(s.Fetch(ctx, s.Issue()))
	return err
}

// Lookup returns the report for name from the latest applied pull.
func (s *Store) Lookup(name string) (sdk.ServerReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[name]
	return r, ok
}

// Snapshot returns the current collection in pull order.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	reports := make([]sdk.ServerReport, len(s.order))
	for i, name := range s.order {
		reports[i] = s.reports[name]
	}
	return Snapshot{Version: s.version, UpdatedAt: s.updatedAt, Reports: reports}
}

// Version is the ticket of the applied snapshot; zero before the first pull.
func (s *Store) Version() Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Dropped counts stale responses that were discarded.
func (s *Store) Dropped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
