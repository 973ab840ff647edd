package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/crichq/standings/internal/domain/match"
	"github.com/crichq/standings/internal/domain/standings"
	"github.com/crichq/standings/internal/platform/logging"
)

// RefreshSignaler notifies an out-of-band worker that a series needs a
// recompute. Signal delivery is best effort and never blocks a response.
type RefreshSignaler interface {
	RequestRecompute(ctx context.Context, seriesSlug string) error
}

type StandingsService struct {
	seriesSvc *SeriesService
	provider  SeriesProvider
	snapshots standings.Repository
	signaler  RefreshSignaler
	logger    *logging.Logger
	now       func() time.Time
}

func NewStandingsService(
	seriesSvc *SeriesService,
	provider SeriesProvider,
	snapshots standings.Repository,
	signaler RefreshSignaler,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{
		seriesSvc: seriesSvc,
		provider:  provider,
		snapshots: snapshots,
		signaler:  signaler,
		logger:    logger,
		now:       time.Now,
	}
}

// GetOrRefresh returns the standings table for a series reference. Without
// force, a stored snapshot answers immediately. On force or a snapshot miss
// it recomputes from upstream match data, falling back to the last stored
// table and finally to a zero-filled placeholder, so the call always yields
// a table for a valid reference.
func (s *StandingsService) GetOrRefresh(ctx context.Context, ref string, force bool) (standings.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetOrRefresh")
	defer span.End()

	resolved, err := s.seriesSvc.Resolve(ctx, ref, force)
	if err != nil {
		return standings.Table{}, err
	}

	if !force {
		table, ok, err := s.snapshots.GetBySlug(ctx, resolved.Slug)
		if err != nil {
			s.logger.WarnContext(ctx, "standings snapshot lookup failed", "slug", resolved.Slug, "error", err)
		} else if ok {
			return table, nil
		}
	}

	// The recompute signal and the inline fetch are independent: a dead
	// queue must not stop the fetch, and a failed fetch must still leave
	// the signal queued.
	var (
		wg       conc.WaitGroup
		matches  []match.Match
		fetchErr error
	)
	if s.signaler != nil {
		wg.Go(func() {
			if err := s.signaler.RequestRecompute(ctx, resolved.Slug); err != nil {
				s.logger.WarnContext(ctx, "recompute signal failed", "slug", resolved.Slug, "error", err)
			}
		})
	}
	wg.Go(func() {
		matches, fetchErr = s.provider.ListMatches(ctx, resolved.ID)
	})
	wg.Wait()

	if fetchErr != nil {
		s.logger.WarnContext(ctx, "match fetch failed", "slug", resolved.Slug, "error", fetchErr)

		table, ok, err := s.snapshots.GetBySlug(ctx, resolved.Slug)
		if err == nil && ok {
			return table, nil
		}
		return standings.PlaceholderTable(resolved.ID, resolved.Slug, resolved.Teams, s.now()), nil
	}

	table := s.compute(resolved.ID, resolved.Slug, resolved.Teams, matches)
	if table.Placeholder {
		return table, nil
	}
	if err := s.snapshots.Replace(ctx, table); err != nil {
		s.logger.WarnContext(ctx, "standings snapshot store failed", "slug", resolved.Slug, "error", err)
	}
	return table, nil
}

// Recompute rebuilds and stores the table for an already-resolved slug.
// Used by the internal refresh path, where there is no snapshot fallback:
// a failed fetch is an error the caller retries.
func (s *StandingsService) Recompute(ctx context.Context, ref string) (standings.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Recompute")
	defer span.End()

	resolved, err := s.seriesSvc.Resolve(ctx, ref, false)
	if err != nil {
		return standings.Table{}, err
	}

	matches, err := s.provider.ListMatches(ctx, resolved.ID)
	if err != nil {
		return standings.Table{}, fmt.Errorf("%w: list matches: %v", ErrDependencyUnavailable, err)
	}

	table := s.compute(resolved.ID, resolved.Slug, resolved.Teams, matches)
	if table.Placeholder {
		return table, nil
	}
	if err := s.snapshots.Replace(ctx, table); err != nil {
		return standings.Table{}, fmt.Errorf("store standings snapshot: %w", err)
	}
	return table, nil
}

func (s *StandingsService) compute(seriesID, slug string, declaredTeams []string, matches []match.Match) standings.Table {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ScheduledAt.Before(matches[j].ScheduledAt)
	})
	return standings.Table{
		SeriesID:   seriesID,
		SeriesSlug: slug,
		Rows:       standings.Compute(declaredTeams, matches),
		ComputedAt: s.now(),
		// Nothing played yet: the zero table stands in but is never stored.
		Placeholder: !standings.HasCompleted(matches),
	}
}
