package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/engine/risk"
	"pulsegrid/ports"
)

// seriesRepository implements the SeriesRepository interface
type seriesRepository struct {
	db *sqlx.DB
}

// NewSeriesRepository creates a new series repository
func NewSeriesRepository(db *sqlx.DB) ports.SeriesRepository {
	return &seriesRepository{db: db}
}

// Migrate creates the backing tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS indicator_points (
			country TEXT NOT NULL,
			indicator TEXT NOT NULL,
			year INTEGER NOT NULL,
			value DOUBLE PRECISION,
			PRIMARY KEY (country, indicator, year)
		)`,
		`CREATE TABLE IF NOT EXISTS risk_timelines (
			id TEXT PRIMARY KEY,
			country TEXT NOT NULL,
			latest DOUBLE PRECISION NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveSeries upserts every point of a series. Missing values are stored as
// SQL NULL so they round-trip as missing points.
func (r *seriesRepository) SaveSeries(ctx context.Context, country core.CountryCode, indicator core.IndicatorKey, s series.TimeSeries) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO indicator_points (country, indicator, year, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (country, indicator, year) DO UPDATE SET value = EXCLUDED.value`

	for _, p := range s {
		var value sql.NullFloat64
		if !p.Missing() {
			value = sql.NullFloat64{Float64: p.Value, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, query, country.String(), indicator.String(), p.Year, value); err != nil {
			return fmt.Errorf("failed to save point %s/%s/%d: %w", country, indicator, p.Year, err)
		}
	}
	return tx.Commit()
}

// GetSeries loads one series ordered by year.
func (r *seriesRepository) GetSeries(ctx context.Context, country core.CountryCode, indicator core.IndicatorKey) (series.TimeSeries, error) {
	query := `SELECT year, value FROM indicator_points
		WHERE country = $1 AND indicator = $2 ORDER BY year`

	rows, err := r.db.QueryxContext(ctx, query, country.String(), indicator.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	var out series.TimeSeries
	for rows.Next() {
		var year int
		var value sql.NullFloat64
		if err := rows.Scan(&year, &value); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		point := series.TimePoint{Year: year, Value: math.NaN()}
		if value.Valid {
			point.Value = value.Float64
		}
		out = append(out, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate series: %w", err)
	}
	if len(out) == 0 {
		return nil, core.NewNotFoundError("series", fmt.Sprintf("%s/%s", country, indicator))
	}
	return out, nil
}

// ListIndicators returns the indicator keys stored for a country.
func (r *seriesRepository) ListIndicators(ctx context.Context, country core.CountryCode) ([]core.IndicatorKey, error) {
	query := `SELECT DISTINCT indicator FROM indicator_points WHERE country = $1 ORDER BY indicator`

	var raw []string
	if err := r.db.SelectContext(ctx, &raw, query, country.String()); err != nil {
		return nil, fmt.Errorf("failed to list indicators: %w", err)
	}
	keys := make([]core.IndicatorKey, len(raw))
	for i, s := range raw {
		keys[i] = core.IndicatorKey(s)
	}
	return keys, nil
}

// ListCountries returns every country with stored data.
func (r *seriesRepository) ListCountries(ctx context.Context) ([]core.CountryCode, error) {
	query := `SELECT DISTINCT country FROM indicator_points ORDER BY country`

	var raw []string
	if err := r.db.SelectContext(ctx, &raw, query); err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	codes := make([]core.CountryCode, len(raw))
	for i, s := range raw {
		codes[i] = core.CountryCode(s)
	}
	return codes, nil
}

// SaveRiskTimeline stores a computed timeline as a JSON payload keyed by a
// fresh result ID.
func (r *seriesRepository) SaveRiskTimeline(ctx context.Context, timeline *risk.Timeline) error {
	payload, err := json.Marshal(timeline)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline: %w", err)
	}

	query := `INSERT INTO risk_timelines (id, country, latest, payload) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, core.NewID().String(), timeline.Country.String(), timeline.Latest, payload); err != nil {
		return fmt.Errorf("failed to save risk timeline: %w", err)
	}
	return nil
}
