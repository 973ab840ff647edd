package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/crichq/standings/internal/domain/series"
)

type SeriesRepository struct {
	db *sqlx.DB
}

func NewSeriesRepository(db *sqlx.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

type seriesTableModel struct {
	Slug      string    `db:"slug"`
	SeriesID  string    `db:"series_id"`
	Name      string    `db:"name"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Formats   []byte    `db:"formats"`
	Teams     []byte    `db:"teams"`
}

func (r *SeriesRepository) GetBySlug(ctx context.Context, slug string) (series.Series, bool, error) {
	const query = `
SELECT slug, series_id, name, start_date, end_date, formats, teams
FROM series_identities
WHERE slug = $1`

	var row seriesTableModel
	if err := r.db.GetContext(ctx, &row, query, slug); err != nil {
		if isNotFound(err) {
			return series.Series{}, false, nil
		}
		return series.Series{}, false, fmt.Errorf("get series identity: %w", err)
	}

	record := series.Series{
		ID:        row.SeriesID,
		Slug:      row.Slug,
		Name:      row.Name,
		StartDate: row.StartDate.UTC(),
		EndDate:   row.EndDate.UTC(),
	}
	if len(row.Formats) > 0 {
		if err := sonic.Unmarshal(row.Formats, &record.Formats); err != nil {
			return series.Series{}, false, fmt.Errorf("decode series formats: %w", err)
		}
	}
	if len(row.Teams) > 0 {
		if err := sonic.Unmarshal(row.Teams, &record.Teams); err != nil {
			return series.Series{}, false, fmt.Errorf("decode series teams: %w", err)
		}
	}
	return record, true, nil
}

func (r *SeriesRepository) Upsert(ctx context.Context, record series.Series) error {
	formats, err := sonic.Marshal(record.Formats)
	if err != nil {
		return fmt.Errorf("encode series formats: %w", err)
	}
	teams, err := sonic.Marshal(record.Teams)
	if err != nil {
		return fmt.Errorf("encode series teams: %w", err)
	}

	const query = `
INSERT INTO series_identities (slug, series_id, name, start_date, end_date, formats, teams, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (slug)
DO UPDATE SET
    series_id = EXCLUDED.series_id,
    name = EXCLUDED.name,
    start_date = EXCLUDED.start_date,
    end_date = EXCLUDED.end_date,
    formats = EXCLUDED.formats,
    teams = EXCLUDED.teams,
    updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query,
		record.Slug, record.ID, record.Name, record.StartDate.UTC(), record.EndDate.UTC(), formats, teams,
	); err != nil {
		return fmt.Errorf("upsert series identity: %w", err)
	}
	return nil
}
