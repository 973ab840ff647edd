package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/crichq/standings/internal/domain/standings"
)

type StandingsRepository struct {
	db *sqlx.DB
}

func NewStandingsRepository(db *sqlx.DB) *StandingsRepository {
	return &StandingsRepository{db: db}
}

type standingsTableModel struct {
	SeriesSlug  string    `db:"series_slug"`
	SeriesID    string    `db:"series_id"`
	Rows        []byte    `db:"rows"`
	ComputedAt  time.Time `db:"computed_at"`
	Placeholder bool      `db:"placeholder"`
}

func (r *StandingsRepository) GetBySlug(ctx context.Context, slug string) (standings.Table, bool, error) {
	const query = `
SELECT series_slug, series_id, rows, computed_at, placeholder
FROM standings_snapshots
WHERE series_slug = $1`

	var row standingsTableModel
	if err := r.db.GetContext(ctx, &row, query, slug); err != nil {
		if isNotFound(err) {
			return standings.Table{}, false, nil
		}
		return standings.Table{}, false, fmt.Errorf("get standings snapshot: %w", err)
	}

	table := standings.Table{
		SeriesID:    row.SeriesID,
		SeriesSlug:  row.SeriesSlug,
		ComputedAt:  row.ComputedAt.UTC(),
		Placeholder: row.Placeholder,
	}
	if len(row.Rows) > 0 {
		if err := sonic.Unmarshal(row.Rows, &table.Rows); err != nil {
			return standings.Table{}, false, fmt.Errorf("decode standings rows: %w", err)
		}
	}
	return table, true, nil
}

func (r *StandingsRepository) Replace(ctx context.Context, table standings.Table) error {
	rows, err := sonic.Marshal(table.Rows)
	if err != nil {
		return fmt.Errorf("encode standings rows: %w", err)
	}

	const query = `
INSERT INTO standings_snapshots (series_slug, series_id, rows, computed_at, placeholder)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (series_slug)
DO UPDATE SET
    series_id = EXCLUDED.series_id,
    rows = EXCLUDED.rows,
    computed_at = EXCLUDED.computed_at,
    placeholder = EXCLUDED.placeholder`

	if _, err := r.db.ExecContext(ctx, query,
		table.SeriesSlug, table.SeriesID, rows, table.ComputedAt.UTC(), table.Placeholder,
	); err != nil {
		return fmt.Errorf("replace standings snapshot: %w", err)
	}
	return nil
}
