package memory

import (
	"context"
	"sync"

	"github.com/crichq/standings/internal/domain/series"
)

type SeriesRepository struct {
	mu    sync.RWMutex
	items map[string]series.Series
}

func NewSeriesRepository() *SeriesRepository {
	return &SeriesRepository{
		items: make(map[string]series.Series),
	}
}

func (r *SeriesRepository) GetBySlug(_ context.Context, slug string) (series.Series, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[slug]
	if !ok {
		return series.Series{}, false, nil
	}
	return record, true, nil
}

func (r *SeriesRepository) Upsert(_ context.Context, record series.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[record.Slug] = record
	return nil
}
