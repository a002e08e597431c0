package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// MandiPrice is one market's daily price record per quintal.
type MandiPrice struct {
	District    string    `json:"district"`
	Market      string    `json:"market"`
	Commodity   string    `json:"commodity"`
	MinPrice    float64   `json:"minPrice"`
	MaxPrice    float64   `json:"maxPrice"`
	ModalPrice  float64   `json:"modalPrice"`
	ArrivalDate time.Time `json:"arrivalDate"`
}

type priceRow struct {
	District    string  `db:"district"`
	Market      string  `db:"market"`
	Commodity   string  `db:"commodity"`
	MinPrice    float64 `db:"min_price"`
	MaxPrice    float64 `db:"max_price"`
	ModalPrice  float64 `db:"modal_price"`
	ArrivalDate string  `db:"arrival_date"`
}

func (r priceRow) toPrice() (MandiPrice, error) {
	day, err := time.Parse(dayLayout, r.ArrivalDate)
	if err != nil {
		return MandiPrice{}, fmt.Errorf("parse arrival date %q: %w", r.ArrivalDate, err)
	}
	return MandiPrice{
		District:    r.District,
		Market:      r.Market,
		Commodity:   r.Commodity,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
		ModalPrice:  r.ModalPrice,
		ArrivalDate: day,
	}, nil
}

const priceColumns = "district, market, commodity, min_price, max_price, modal_price, arrival_date"

// UpsertPrice stores a price record, replacing any record for the same market,
// commodity and arrival date.
func (s *Store) UpsertPrice(ctx context.Context, p MandiPrice) error {
	if p.ArrivalDate.IsZero() {
		return fmt.Errorf("upsert price: arrival date is required")
	}
	row := priceRow{
		District:    p.District,
		Market:      p.Market,
		Commodity:   p.Commodity,
		MinPrice:    p.MinPrice,
		MaxPrice:    p.MaxPrice,
		ModalPrice:  p.ModalPrice,
		ArrivalDate: p.ArrivalDate.UTC().Format(dayLayout),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO mandi_prices (`+priceColumns+`)
		VALUES (:district, :market, :commodity, :min_price, :max_price, :modal_price, :arrival_date)
		ON CONFLICT (district, market, commodity, arrival_date) DO UPDATE SET
			min_price   = excluded.min_price,
			max_price   = excluded.max_price,
			modal_price = excluded.modal_price`, row)
	if err != nil {
		return fmt.Errorf("upsert price: %w", err)
	}
	return nil
}

// LatestPrice returns the most recent record in a district whose commodity
// matches any of the given names.
func (s *Store) LatestPrice(ctx context.Context, district string, commodities ...string) (MandiPrice, error) {
	if len(commodities) == 0 {
		return MandiPrice{}, fmt.Errorf("latest price: %w", ErrNotFound)
	}

	query, args, err := sqlx.In(`
		SELECT `+priceColumns+`
		FROM mandi_prices
		WHERE district = ? AND commodity IN (?)
		ORDER BY arrival_date DESC, modal_price DESC
		LIMIT 1`, district, commodities)
	if err != nil {
		return MandiPrice{}, fmt.Errorf("latest price: %w", err)
	}

	var row priceRow
	err = s.db.GetContext(ctx, &row, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return MandiPrice{}, fmt.Errorf("price for %v in %q: %w", commodities, district, ErrNotFound)
	}
	if err != nil {
		return MandiPrice{}, fmt.Errorf("latest price: %w", err)
	}
	return row.toPrice()
}

// ListPrices returns up to limit records for a district, newest first.
func (s *Store) ListPrices(ctx context.Context, district string, limit int) ([]MandiPrice, error) {
	var rows []priceRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT `+priceColumns+`
		FROM mandi_prices
		WHERE district = ?
		ORDER BY arrival_date DESC, commodity, market
		LIMIT ?`, district, limit); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}

	out := make([]MandiPrice, 0, len(rows))
	for _, r := range rows {
		p, err := r.toPrice()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
