package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"streamtags/internal/adapters/platforms"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/services/enrichment/domain"
)

// memStore is an in-memory StorePort ordered by id
type memStore struct {
	mu   sync.Mutex
	recs []domain.Record

	countErr   error
	findErr    error
	findErrAt  int // FindMany call index that fails; 0 means first
	conflicts  int // UpdateTags calls to reject before accepting
	updateErr  error
	findCalls  int
	uniqueHits int
	writes     int
}

func newMemStore(recs ...domain.Record) *memStore {
	s := &memStore{recs: slices.Clone(recs)}
	slices.SortFunc(s.recs, func(a, b domain.Record) int { return strings.Compare(a.ID, b.ID) })
	return s
}

func (s *memStore) match(f domain.Filter, r domain.Record) bool {
	if f.Platform != "" && !strings.EqualFold(f.Platform, r.Platform) {
		return false
	}
	if f.TagsEmpty != nil && (*f.TagsEmpty != (len(r.Tags) == 0)) {
		return false
	}
	if f.Unenriched && r.LastEnrichmentUpdate != nil {
		return false
	}
	return true
}

func (s *memStore) Count(_ context.Context, f domain.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, r := range s.recs {
		if s.match(f, r) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) FindMany(_ context.Context, f domain.Filter, p domain.Page) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := s.findCalls
	s.findCalls++
	if s.findErr != nil && call >= s.findErrAt {
		return nil, s.findErr
	}
	var all []domain.Record
	for _, r := range s.recs {
		if s.match(f, r) {
			all = append(all, cloneRec(r))
		}
	}
	if p.Skip >= len(all) {
		return nil, nil
	}
	return all[p.Skip:min(p.Skip+p.Take, len(all))], nil
}

func (s *memStore) FindUnique(_ context.Context, id string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniqueHits++
	for _, r := range s.recs {
		if r.ID == id {
			return cloneRec(r), nil
		}
	}
	return domain.Record{}, perr.NotFoundf("streamer %s not found", id)
}

func (s *memStore) UpdateTags(_ context.Context, id string, tags []string, at time.Time, expected *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.conflicts > 0 {
		s.conflicts--
		return perr.Conflictf("expected exactly one row affected, got 0")
	}
	for i := range s.recs {
		r := &s.recs[i]
		if r.ID != id {
			continue
		}
		if !sameTime(r.UpdatedAt, expected) {
			return perr.Conflictf("expected exactly one row affected, got 0")
		}
		r.Tags = slices.Clone(tags)
		r.UpdatedAt, r.LastEnrichmentUpdate = &at, &at
		s.writes++
		return nil
	}
	return perr.Conflictf("expected exactly one row affected, got 0")
}

func (s *memStore) get(id string) domain.Record {
	r, _ := s.FindUnique(context.Background(), id)
	return r
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func cloneRec(r domain.Record) domain.Record {
	r.Tags = slices.Clone(r.Tags)
	r.TopGames = slices.Clone(r.TopGames)
	return r
}

// fakeFetcher serves canned data; calls is shared so tests can check ordering
type fakeFetcher struct {
	p     platforms.Platform
	data  map[string][]string
	err   error
	calls *[]string
	hook  func(username string)
}

func (f *fakeFetcher) Platform() platforms.Platform { return f.p }

func (f *fakeFetcher) FetchTags(_ context.Context, username string) ([]string, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, string(f.p)+":"+username)
	}
	if f.hook != nil {
		f.hook(username)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.data[strings.ToLower(username)], nil
}

// fakeSignals reports live strings and history separately
type fakeSignals struct {
	fakeFetcher
	history map[string][]string
}

func (f *fakeSignals) FetchSignals(ctx context.Context, username string) (platforms.Signals, error) {
	live, err := f.FetchTags(ctx, username)
	return platforms.Signals{Live: live, History: f.history[strings.ToLower(username)]}, err
}

type fakeBatch struct {
	fakeFetcher
	max     int
	batches [][]string
}

func (f *fakeBatch) MaxBatch() int { return f.max }

func (f *fakeBatch) FetchTagsBatch(_ context.Context, usernames []string) (map[string][]string, error) {
	f.batches = append(f.batches, slices.Clone(usernames))
	if f.calls != nil {
		*f.calls = append(*f.calls, string(f.p)+":batch")
	}
	if f.err != nil {
		return nil, f.err
	}
	out := map[string][]string{}
	for _, u := range usernames {
		if v, ok := f.data[strings.ToLower(u)]; ok {
			out[strings.ToLower(u)] = v
		}
	}
	return out, nil
}

// recMetrics counts what the service reports
type recMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	runs     map[string]int
}

func (m *recMetrics) RecordOutcome(platform, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = map[string]int{}
	}
	m.outcomes[platform+"/"+outcome]++
}

func (m *recMetrics) RecordRun(mode, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs == nil {
		m.runs = map[string]int{}
	}
	m.runs[mode+"/"+result]++
}

type fakeAudit struct {
	mu      sync.Mutex
	runs    []string
	results int
}

func (a *fakeAudit) RecordRun(_ context.Context, s domain.RunSummary, result string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runs = append(a.runs, s.RunID+"/"+result)
	return nil
}

func (a *fakeAudit) RecordResults(_ context.Context, _ string, _ time.Time, rs []domain.InferenceResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results += len(rs)
	return nil
}

// tickingClock advances one second per call so successive writes differ
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestService(st domain.StorePort, cfg Config, fs ...platforms.Fetcher) *Service {
	n := 0
	return New(st, platforms.NewRegistry(fs...), nil, cfg,
		WithClock(tickingClock()),
		WithIDs(func() string { n++; return "run-" + string(rune('0'+n)) }),
	)
}

func rec(id, platform, user string, tags []string, game string, top ...string) domain.Record {
	return domain.Record{ID: id, Platform: platform, Username: user, Tags: tags, CurrentGame: game, TopGames: top}
}
