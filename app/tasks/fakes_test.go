package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lysyi3m/rss-sheets/app/database"
	"github.com/lysyi3m/rss-sheets/app/feed"
)

// fakeSource returns one scripted batch per call; the last batch repeats.
type fakeSource struct {
	mu      sync.Mutex
	batches [][]feed.Entry
	errs    []error
	panics  bool
	calls   int
	fetched chan string
}

func (s *fakeSource) Fetch(ctx context.Context, uri string) ([]feed.Entry, error) {
	s.mu.Lock()
	call := s.calls
	s.calls++
	s.mu.Unlock()

	if s.fetched != nil {
		select {
		case s.fetched <- uri:
		default:
		}
	}

	if s.panics {
		panic("boom")
	}
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	if len(s.batches) == 0 {
		return nil, nil
	}
	if call >= len(s.batches) {
		call = len(s.batches) - 1
	}
	return s.batches[call], nil
}

func entries(links ...string) []feed.Entry {
	out := make([]feed.Entry, 0, len(links))
	for _, link := range links {
		out = append(out, feed.Entry{
			Link:      link,
			Published: "Mon, 02 Jan 2023 10:00:00 +0000",
			Title:     "Title " + link,
			Author:    "author",
		})
	}
	return out
}

// fakeSink records the sheet contents the way the writer lays them out.
type fakeSink struct {
	mu          sync.Mutex
	header      bool
	rows        [][]string
	existing    []string
	ensureCalls int
	appendCalls int
	appendErr   error
	existingErr error
}

func (s *fakeSink) EnsureHeader(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureCalls++
	s.header = true
	return nil
}

func (s *fakeSink) Append(ctx context.Context, rows []feed.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendCalls++
	if s.appendErr != nil {
		return s.appendErr
	}
	for _, row := range rows {
		s.rows = append(s.rows, row.Values())
	}
	return nil
}

func (s *fakeSink) ExistingLinks(ctx context.Context) ([]string, error) {
	if s.existingErr != nil {
		return nil, s.existingErr
	}
	return s.existing, nil
}

func (s *fakeSink) links() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row[2])
	}
	return out
}

type fakeRecorder struct {
	mu     sync.Mutex
	checks map[string]int
	signal chan string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{checks: make(map[string]int), signal: make(chan string, 16)}
}

func (r *fakeRecorder) RecordLastCheck(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	r.checks[id]++
	r.mu.Unlock()

	select {
	case r.signal <- id:
	default:
	}
	return nil
}

func (r *fakeRecorder) count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checks[id]
}

// fakeMonitorRepo is an in-memory MonitorRepository.
type fakeMonitorRepo struct {
	*fakeRecorder
	mu       sync.Mutex
	monitors []database.Monitor
	listErr  error
}

var _ database.MonitorRepository = (*fakeMonitorRepo)(nil)

func newFakeMonitorRepo(monitors ...database.Monitor) *fakeMonitorRepo {
	return &fakeMonitorRepo{fakeRecorder: newFakeRecorder(), monitors: monitors}
}

func (r *fakeMonitorRepo) GetMonitor(ctx context.Context, id string) (*database.Monitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.monitors {
		if r.monitors[i].ID == id {
			m := r.monitors[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (r *fakeMonitorRepo) ListMonitors(ctx context.Context) ([]database.Monitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]database.Monitor(nil), r.monitors...), nil
}

func (r *fakeMonitorRepo) ListActiveMonitors(ctx context.Context) ([]database.Monitor, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []database.Monitor
	for _, m := range r.monitors {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMonitorRepo) CreateMonitor(ctx context.Context, name, feedURL, sheetID string) (*database.Monitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.monitors {
		if m.Name == name {
			return nil, database.ErrMonitorExists
		}
	}
	m := database.Monitor{ID: "id-" + name, Name: name, FeedURL: feedURL, SheetID: sheetID, IsActive: true}
	r.monitors = append(r.monitors, m)
	return &m, nil
}

func (r *fakeMonitorRepo) UpsertMonitor(ctx context.Context, name, feedURL, sheetID string, active bool) (*database.Monitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.monitors {
		if r.monitors[i].Name == name {
			r.monitors[i].FeedURL = feedURL
			r.monitors[i].SheetID = sheetID
			r.monitors[i].IsActive = active
			m := r.monitors[i]
			return &m, nil
		}
	}
	m := database.Monitor{ID: "id-" + name, Name: name, FeedURL: feedURL, SheetID: sheetID, IsActive: active}
	r.monitors = append(r.monitors, m)
	return &m, nil
}

func (r *fakeMonitorRepo) SetMonitorActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.monitors {
		if r.monitors[i].ID == id {
			r.monitors[i].IsActive = active
			return nil
		}
	}
	return database.ErrMonitorNotFound
}

var errTest = errors.New("test failure")
