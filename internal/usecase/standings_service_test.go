package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crichq/standings/internal/domain/match"
	"github.com/crichq/standings/internal/domain/series"
	"github.com/crichq/standings/internal/domain/standings"
	"github.com/crichq/standings/internal/platform/logging"
)

type stubSnapshotRepository struct {
	mu       sync.Mutex
	bySlug   map[string]standings.Table
	getErr   error
	replaces int
}

func (r *stubSnapshotRepository) GetBySlug(_ context.Context, slug string) (standings.Table, bool, error) {
	if r.getErr != nil {
		return standings.Table{}, false, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.bySlug[slug]
	return table, ok, nil
}

func (r *stubSnapshotRepository) Replace(_ context.Context, table standings.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bySlug == nil {
		r.bySlug = make(map[string]standings.Table)
	}
	r.bySlug[table.SeriesSlug] = table
	r.replaces++
	return nil
}

type stubSignaler struct {
	mu    sync.Mutex
	slugs []string
	err   error
}

func (s *stubSignaler) RequestRecompute(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slugs = append(s.slugs, slug)
	return s.err
}

func newStandingsFixture(provider *stubProvider, snapshots *stubSnapshotRepository, signaler *stubSignaler) *StandingsService {
	seriesSvc := NewSeriesService(&stubSeriesRepository{}, provider, logging.NewNop())
	seriesSvc.now = fixedClock(time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC))
	svc := NewStandingsService(seriesSvc, provider, snapshots, signaler, logging.NewNop())
	svc.now = fixedClock(time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC))
	return svc
}

func TestStandingsService_GetOrRefresh_ReturnsSnapshotWithoutForce(t *testing.T) {
	t.Parallel()

	stored := standings.Table{SeriesSlug: "ipl-2025", Rows: []standings.Row{{Team: "CSK", Rank: 1}}}
	snapshots := &stubSnapshotRepository{bySlug: map[string]standings.Table{"ipl-2025": stored}}
	provider := &stubProvider{
		listing:  []series.Series{{ID: "s-1", Name: "IPL 2025"}},
		matchErr: errors.New("must not be called"),
	}
	signaler := &stubSignaler{}

	svc := newStandingsFixture(provider, snapshots, signaler)

	got, err := svc.GetOrRefresh(context.Background(), "ipl-2025", false)
	if err != nil {
		t.Fatalf("GetOrRefresh error: %v", err)
	}
	if len(got.Rows) != 1 || got.Rows[0].Team != "CSK" {
		t.Fatalf("unexpected table: %+v", got)
	}
	if len(signaler.slugs) != 0 {
		t.Fatalf("snapshot hit must not signal a recompute")
	}
}

func TestStandingsService_GetOrRefresh_ForceRecomputesAndSignals(t *testing.T) {
	t.Parallel()

	stale := standings.Table{SeriesSlug: "ipl-2025", Rows: []standings.Row{{Team: "Old", Rank: 1}}}
	snapshots := &stubSnapshotRepository{bySlug: map[string]standings.Table{"ipl-2025": stale}}
	provider := &stubProvider{
		listing: []series.Series{{ID: "s-1", Name: "IPL 2025"}},
		matches: map[string][]match.Match{
			"s-1": {
				{
					ID: "m1", TeamA: "CSK", TeamB: "MI",
					Status: match.StatusCompleted, Winner: "CSK",
					ScheduledAt: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
				},
			},
		},
	}
	signaler := &stubSignaler{}

	svc := newStandingsFixture(provider, snapshots, signaler)

	got, err := svc.GetOrRefresh(context.Background(), "ipl-2025", true)
	if err != nil {
		t.Fatalf("GetOrRefresh error: %v", err)
	}
	if len(got.Rows) != 2 || got.Rows[0].Team != "CSK" || got.Rows[0].Points != 2 {
		t.Fatalf("unexpected recomputed table: %+v", got.Rows)
	}
	if snapshots.replaces != 1 {
		t.Fatalf("recomputed table must be stored, replaces = %d", snapshots.replaces)
	}
	if len(signaler.slugs) != 1 || signaler.slugs[0] != "ipl-2025" {
		t.Fatalf("force must signal a recompute, got %v", signaler.slugs)
	}
}

func TestStandingsService_GetOrRefresh_ComputedTableOmitsIdleTeams(t *testing.T) {
	t.Parallel()

	snapshots := &stubSnapshotRepository{}
	provider := &stubProvider{
		listing: []series.Series{{
			ID: "s-1", Name: "IPL 2025",
			Teams: []string{"CSK", "MI", "RCB", "KKR"},
		}},
		matches: map[string][]match.Match{
			"s-1": {{ID: "m1", TeamA: "CSK", TeamB: "MI", Status: match.StatusCompleted, Winner: "CSK"}},
		},
	}

	svc := newStandingsFixture(provider, snapshots, &stubSignaler{})

	got, err := svc.GetOrRefresh(context.Background(), "ipl-2025", true)
	if err != nil {
		t.Fatalf("GetOrRefresh error: %v", err)
	}
	if got.Placeholder {
		t.Fatalf("a played season must not be a placeholder")
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want only the teams that played", len(got.Rows))
	}
	for _, row := range got.Rows {
		if row.Team != "CSK" && row.Team != "MI" {
			t.Fatalf("idle declared team %s must not appear", row.Team)
		}
	}
	if snapshots.replaces != 1 {
		t.Fatalf("computed table must be stored, replaces = %d", snapshots.replaces)
	}
}

func TestStandingsService_GetOrRefresh_EmptySeasonYieldsUnstoredPlaceholder(t *testing.T) {
	t.Parallel()

	snapshots := &stubSnapshotRepository{}
	provider := &stubProvider{
		listing: []series.Series{{
			ID: "s-1", Name: "IPL 2025",
			Teams: []string{"CSK", "MI", "RCB"},
		}},
		matches: map[string][]match.Match{"s-1": {}},
	}

	svc := newStandingsFixture(provider, snapshots, &stubSignaler{})

	got, err := svc.GetOrRefresh(context.Background(), "ipl-2025", false)
	if err != nil {
		t.Fatalf("GetOrRefresh error: %v", err)
	}
	if !got.Placeholder {
		t.Fatalf("a season with no completed matches must be flagged placeholder")
	}
	if len(got.Rows) != 3 {
		t.Fatalf("rows = %d, want the declared teams zero-filled", len(got.Rows))
	}
	if snapshots.replaces != 0 {
		t.Fatalf("placeholder tables must not be stored, replaces = %d", snapshots.replaces)
	}
}

func TestStandingsService_GetOrRefresh_SignalFailureDoesNotBlockFetch(t *testing.T) {
	t.Parallel()

	snapshots := &stubSnapshotRepository{}
	provider := &stubProvider{
		listing: []series.Series{{ID: "s-1", Name: "IPL 2025"}},
		matches: map[string][]match.Match{
			"s-1": {{ID: "m1", TeamA: "CSK", TeamB: "MI", Status: match.StatusCompleted, Winner: "CSK"}},
		},
	}
	signaler := &stubSignaler{err: errors.New("queue down")}

	svc := newStandingsFixture(provider, snapshots, signaler)

	if _, err := svc.GetOrRefresh(context.Background(), "ipl-2025", true); err != nil {
		t.Fatalf("GetOrRefresh error: %v", err)
	}
	if snapshots.replaces != 1 {
		t.Fatalf("fetch must complete despite signal failure")
	}
}

func TestStandingsService_GetOrRefresh_LastKnownGoodOnFetchFailure(t *testing.T) {
	t.Parallel()

	stored := standings.Table{SeriesSlug: "ipl-2025", Rows: []standings.Row{{Team: "CSK", Rank: 1}}}
	snapshots := &stubSnapshotRepository{bySlug: map[string]standings.Table{"ipl-2025": stored}}
	provider := &stubProvider{
		listing:  []series.Series{{ID: "s-1", Name: "IPL 2025"}},
		matchErr: errors.New("upstream down"),
	}

	svc := newStandingsFixture(provider, snapshots, &stubSignaler{})

	got, err := svc.GetOrRefresh(context.Background(), "ipl-2025", true)
	if err != nil {
		t.Fatalf("GetOrRefresh error: %v", err)
	}
	if len(got.Rows) != 1 || got.Rows[0].Team != "CSK" {
		t.Fatalf("expected last known good table, got %+v", got)
	}
}

func TestStandingsService_GetOrRefresh_PlaceholderOnColdStartFailure(t *testing.T) {
	t.Parallel()

	snapshots := &stubSnapshotRepository{}
	boom := errors.New("upstream down")
	provider := &stubProvider{fetchErr: boom, listErr: boom, matchErr: boom}

	svc := newStandingsFixture(provider, snapshots, &stubSignaler{})

	got, err := svc.GetOrRefresh(context.Background(), "ipl-2025", false)
	if err != nil {
		t.Fatalf("GetOrRefresh error: %v", err)
	}
	if !got.Placeholder {
		t.Fatalf("cold start with no data must yield a placeholder table")
	}
	if len(got.Rows) != len(series.DefaultRoster) {
		t.Fatalf("placeholder rows = %d, want full default roster", len(got.Rows))
	}
	for _, row := range got.Rows {
		if row.Played != 0 || row.Points != 0 {
			t.Fatalf("placeholder row not zero-filled: %+v", row)
		}
	}
	if snapshots.replaces != 0 {
		t.Fatalf("placeholder tables must not be stored")
	}
}

func TestStandingsService_Recompute_ErrorsWhenUpstreamDown(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		listing:  []series.Series{{ID: "s-1", Name: "IPL 2025"}},
		matchErr: errors.New("upstream down"),
	}

	svc := newStandingsFixture(provider, &stubSnapshotRepository{}, &stubSignaler{})

	if _, err := svc.Recompute(context.Background(), "ipl-2025"); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestStandingsService_Recompute_EmptySeasonNotStored(t *testing.T) {
	t.Parallel()

	snapshots := &stubSnapshotRepository{}
	provider := &stubProvider{
		listing: []series.Series{{ID: "s-1", Name: "IPL 2025", Teams: []string{"CSK", "MI"}}},
		matches: map[string][]match.Match{"s-1": {}},
	}

	svc := newStandingsFixture(provider, snapshots, &stubSignaler{})

	got, err := svc.Recompute(context.Background(), "ipl-2025")
	if err != nil {
		t.Fatalf("Recompute error: %v", err)
	}
	if !got.Placeholder {
		t.Fatalf("empty season must yield a placeholder table")
	}
	if snapshots.replaces != 0 {
		t.Fatalf("placeholder tables must not be stored, replaces = %d", snapshots.replaces)
	}
}

func TestRefreshService_RefreshAll(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		listing: []series.Series{
			{ID: "s-1", Name: "IPL 2025"},
			{ID: "s-2", Name: "Big Bash League 2025"},
		},
		matches: map[string][]match.Match{
			"s-1": {{ID: "m1", TeamA: "A", TeamB: "B", Status: match.StatusCompleted, Winner: "A"}},
			"s-2": {{ID: "m2", TeamA: "C", TeamB: "D", Status: match.StatusCompleted, Winner: "D"}},
		},
	}
	snapshots := &stubSnapshotRepository{}

	svc := newStandingsFixture(provider, snapshots, &stubSignaler{})
	refresher := NewRefreshService(svc, logging.NewNop())

	result, err := refresher.RefreshAll(context.Background(), RefreshInput{
		SeriesRefs: []string{"ipl-2025", "big-bash-league-2025", "ipl-2025", " "},
		MaxWorkers: 2,
	})
	if err != nil {
		t.Fatalf("RefreshAll error: %v", err)
	}
	if result.TaskCount != 2 {
		t.Fatalf("task count = %d, want deduped 2", result.TaskCount)
	}
	if result.SuccessCount != 2 || result.FailedCount != 0 {
		t.Fatalf("success=%d failed=%d", result.SuccessCount, result.FailedCount)
	}
	if snapshots.replaces != 2 {
		t.Fatalf("replaces = %d, want 2", snapshots.replaces)
	}
}

func TestRefreshService_RefreshAll_RequiresRefs(t *testing.T) {
	t.Parallel()

	refresher := NewRefreshService(nil, logging.NewNop())
	if _, err := refresher.RefreshAll(context.Background(), RefreshInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
