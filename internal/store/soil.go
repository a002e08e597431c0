package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
)

// timestampLayout is fixed width so recorded_at sorts chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SoilRecord is one sensor soil measurement.
type SoilRecord struct {
	District   string               `json:"district"`
	StationID  string               `json:"stationId"`
	RecordedAt time.Time            `json:"recordedAt"`
	Reading    advisory.SoilReading `json:"reading"`
}

type soilRow struct {
	District   string  `db:"district"`
	StationID  string  `db:"station_id"`
	RecordedAt string  `db:"recorded_at"`
	Nitrogen   int     `db:"nitrogen"`
	Phosphorus int     `db:"phosphorus"`
	Potassium  int     `db:"potassium"`
	PH         float64 `db:"ph"`
}

// InsertSoil appends a soil reading.
func (s *Store) InsertSoil(ctx context.Context, rec SoilRecord) error {
	if rec.RecordedAt.IsZero() {
		return fmt.Errorf("insert soil: recorded_at is required")
	}
	reading := rec.Reading.Clamped()
	row := soilRow{
		District:   rec.District,
		StationID:  rec.StationID,
		RecordedAt: rec.RecordedAt.UTC().Format(timestampLayout),
		Nitrogen:   reading.Nitrogen,
		Phosphorus: reading.Phosphorus,
		Potassium:  reading.Potassium,
		PH:         reading.PH,
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO soil_readings (district, station_id, recorded_at, nitrogen, phosphorus, potassium, ph)
		VALUES (:district, :station_id, :recorded_at, :nitrogen, :phosphorus, :potassium, :ph)`, row)
	if err != nil {
		return fmt.Errorf("insert soil: %w", err)
	}
	return nil
}

// LatestSoil returns the newest soil reading for a district.
func (s *Store) LatestSoil(ctx context.Context, district string) (SoilRecord, error) {
	var row soilRow
	err := s.db.GetContext(ctx, &row, `
		SELECT district, station_id, recorded_at, nitrogen, phosphorus, potassium, ph
		FROM soil_readings
		WHERE district = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`, district)
	if errors.Is(err, sql.ErrNoRows) {
		return SoilRecord{}, fmt.Errorf("soil for %q: %w", district, ErrNotFound)
	}
	if err != nil {
		return SoilRecord{}, fmt.Errorf("latest soil: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, row.RecordedAt)
	if err != nil {
		return SoilRecord{}, fmt.Errorf("parse soil timestamp %q: %w", row.RecordedAt, err)
	}
	return SoilRecord{
		District:   row.District,
		StationID:  row.StationID,
		RecordedAt: ts,
		Reading: advisory.SoilReading{
			Nitrogen:   row.Nitrogen,
			Phosphorus: row.Phosphorus,
			Potassium:  row.Potassium,
			PH:         row.PH,
		},
	}, nil
}
