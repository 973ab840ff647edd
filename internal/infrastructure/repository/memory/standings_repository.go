package memory

import (
	"context"
	"sync"

	"github.com/crichq/standings/internal/domain/standings"
)

type StandingsRepository struct {
	mu    sync.RWMutex
	items map[string]standings.Table
}

func NewStandingsRepository() *StandingsRepository {
	return &StandingsRepository{
		items: make(map[string]standings.Table),
	}
}

func (r *StandingsRepository) GetBySlug(_ context.Context, slug string) (standings.Table, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.items[slug]
	if !ok {
		return standings.Table{}, false, nil
	}
	return table, true, nil
}

func (r *StandingsRepository) Replace(_ context.Context, table standings.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[table.SeriesSlug] = table
	return nil
}
