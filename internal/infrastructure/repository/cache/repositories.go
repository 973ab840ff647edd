package cache

import (
	"context"

	"github.com/crichq/standings/internal/domain/series"
	"github.com/crichq/standings/internal/domain/standings"
	basecache "github.com/crichq/standings/internal/platform/cache"
)

// SeriesRepository caches resolved identities in front of a slower store.
// Writes go through to the next layer and refresh the cached entry.
type SeriesRepository struct {
	next  series.Repository
	cache *basecache.Store
}

func NewSeriesRepository(next series.Repository, cache *basecache.Store) *SeriesRepository {
	return &SeriesRepository{next: next, cache: cache}
}

func (r *SeriesRepository) GetBySlug(ctx context.Context, slug string) (series.Series, bool, error) {
	key := "series:slug:" + slug
	if v, ok := r.cache.Get(ctx, key); ok {
		record, _ := v.(series.Series)
		return record, true, nil
	}

	record, exists, err := r.next.GetBySlug(ctx, slug)
	if err != nil {
		return series.Series{}, false, err
	}
	if exists {
		r.cache.Set(ctx, key, record)
	}
	return record, exists, nil
}

func (r *SeriesRepository) Upsert(ctx context.Context, record series.Series) error {
	if err := r.next.Upsert(ctx, record); err != nil {
		return err
	}
	r.cache.Set(ctx, "series:slug:"+record.Slug, record)
	return nil
}

type StandingsRepository struct {
	next  standings.Repository
	cache *basecache.Store
}

func NewStandingsRepository(next standings.Repository, cache *basecache.Store) *StandingsRepository {
	return &StandingsRepository{next: next, cache: cache}
}

func (r *StandingsRepository) GetBySlug(ctx context.Context, slug string) (standings.Table, bool, error) {
	key := "standings:slug:" + slug
	if v, ok := r.cache.Get(ctx, key); ok {
		table, _ := v.(standings.Table)
		return table, true, nil
	}

	table, exists, err := r.next.GetBySlug(ctx, slug)
	if err != nil {
		return standings.Table{}, false, err
	}
	if exists {
		r.cache.Set(ctx, key, table)
	}
	return table, exists, nil
}

func (r *StandingsRepository) Replace(ctx context.Context, table standings.Table) error {
	if err := r.next.Replace(ctx, table); err != nil {
		return err
	}
	r.cache.Set(ctx, "standings:slug:"+table.SeriesSlug, table)
	return nil
}
