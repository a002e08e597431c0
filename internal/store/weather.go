package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
)

type weatherRow struct {
	District    string  `db:"district"`
	Day         string  `db:"day"`
	Temperature float64 `db:"temperature_c"`
	Humidity    float64 `db:"humidity_pct"`
	Rainfall    float64 `db:"rainfall_mm"`
	UpdatedAt   string  `db:"updated_at"`
}

// UpsertWeather stores the daily sample for a district. A later sample for the
// same day replaces the earlier one.
func (s *Store) UpsertWeather(ctx context.Context, district string, sample advisory.WeatherSample) error {
	if sample.Date.IsZero() {
		return fmt.Errorf("upsert weather: date is required")
	}
	row := weatherRow{
		District:    district,
		Day:         sample.Date.UTC().Format(dayLayout),
		Temperature: sample.Temperature,
		Humidity:    sample.Humidity,
		Rainfall:    sample.Rainfall,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO weather_samples (district, day, temperature_c, humidity_pct, rainfall_mm, updated_at)
		VALUES (:district, :day, :temperature_c, :humidity_pct, :rainfall_mm, :updated_at)
		ON CONFLICT (district, day) DO UPDATE SET
			temperature_c = excluded.temperature_c,
			humidity_pct  = excluded.humidity_pct,
			rainfall_mm   = excluded.rainfall_mm,
			updated_at    = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert weather: %w", err)
	}
	return nil
}

// RecentWeather returns up to limit of the newest daily samples for a
// district, ordered oldest to newest.
func (s *Store) RecentWeather(ctx context.Context, district string, limit int) ([]advisory.WeatherSample, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []weatherRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT district, day, temperature_c, humidity_pct, rainfall_mm, updated_at
		FROM weather_samples
		WHERE district = ?
		ORDER BY day DESC
		LIMIT ?`, district, limit); err != nil {
		return nil, fmt.Errorf("recent weather: %w", err)
	}

	out := make([]advisory.WeatherSample, len(rows))
	for i, r := range rows {
		day, err := time.Parse(dayLayout, r.Day)
		if err != nil {
			return nil, fmt.Errorf("parse weather day %q: %w", r.Day, err)
		}
		out[len(rows)-1-i] = advisory.WeatherSample{
			Date:        day,
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
			Rainfall:    r.Rainfall,
		}
	}
	return out, nil
}
