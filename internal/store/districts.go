package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// District is a Punjab district with the coordinates used for weather lookups.
type District struct {
	Name      string  `db:"name" json:"name"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
}

// ListDistricts returns every known district by name.
func (s *Store) ListDistricts(ctx context.Context) ([]District, error) {
	var out []District
	if err := s.db.SelectContext(ctx, &out,
		"SELECT name, latitude, longitude FROM districts ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	return out, nil
}

// GetDistrict looks a district up case-insensitively.
func (s *Store) GetDistrict(ctx context.Context, name string) (District, error) {
	var d District
	err := s.db.GetContext(ctx, &d,
		"SELECT name, latitude, longitude FROM districts WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return District{}, fmt.Errorf("district %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return District{}, fmt.Errorf("get district: %w", err)
	}
	return d, nil
}
