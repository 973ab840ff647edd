package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/crichq/standings/internal/domain/match"
	"github.com/crichq/standings/internal/domain/series"
	"github.com/crichq/standings/internal/platform/logging"
)

// SeriesProvider is the upstream cricket data feed.
type SeriesProvider interface {
	FetchSeriesByID(ctx context.Context, id string) (series.Series, bool, error)
	ListSeries(ctx context.Context) ([]series.Series, error)
	ListMatches(ctx context.Context, seriesID string) ([]match.Match, error)
}

type SeriesService struct {
	repo     series.Repository
	provider SeriesProvider
	logger   *logging.Logger
	now      func() time.Time
}

func NewSeriesService(repo series.Repository, provider SeriesProvider, logger *logging.Logger) *SeriesService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeriesService{
		repo:     repo,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve turns any caller-supplied reference into a series identity. The
// chain is: stored identity by slug, then a direct upstream lookup for id
// shapes, then an upstream listing scan by slug, then deterministic
// synthesis. Every step that fails falls through, so resolution cannot fail
// for a non-empty reference. A forced refresh skips the stored identity and
// re-resolves upstream.
func (s *SeriesService) Resolve(ctx context.Context, raw string, force bool) (series.Series, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeriesService.Resolve")
	defer span.End()

	ref, err := series.ParseReference(raw)
	if err != nil {
		return series.Series{}, fmt.Errorf("%w: series reference is required", ErrInvalidInput)
	}

	if s.repo != nil && !force {
		record, ok, err := s.repo.GetBySlug(ctx, ref.Slug)
		if err != nil {
			s.logger.WarnContext(ctx, "series identity lookup failed", "slug", ref.Slug, "error", err)
		} else if ok {
			return record, nil
		}
	}

	record, found := s.resolveUpstream(ctx, ref)
	if !found {
		record = series.Synthesize(ref, s.now())
	}
	// The reference slug is the identity key, whatever the upstream name is.
	record.Slug = ref.Slug
	record.RepairDates(s.now())

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, record); err != nil {
			s.logger.WarnContext(ctx, "series identity store failed", "slug", record.Slug, "error", err)
		}
	}

	return record, nil
}

func (s *SeriesService) resolveUpstream(ctx context.Context, ref series.Reference) (series.Series, bool) {
	if s.provider == nil {
		return series.Series{}, false
	}

	if ref.Kind == series.RefUUID || ref.Kind == series.RefLegacyID {
		record, found, err := s.provider.FetchSeriesByID(ctx, ref.Raw)
		if err != nil {
			s.logger.WarnContext(ctx, "series fetch by id failed", "ref", ref.Raw, "error", err)
		} else if found {
			return record, true
		}
	}

	listing, err := s.provider.ListSeries(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "series listing failed", "ref", ref.Raw, "error", err)
		return series.Series{}, false
	}
	for _, candidate := range listing {
		if candidate.MatchesSlug(ref.Slug) {
			return candidate, true
		}
	}

	return series.Series{}, false
}
