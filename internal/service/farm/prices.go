package farm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
)

// PriceStore finds the newest mandi record for any of the commodity names.
type PriceStore interface {
	LatestPrice(ctx context.Context, district string, commodities ...string) (store.MandiPrice, error)
}

// commodityNames lists the market commodity names reported for each crop.
var commodityNames = map[advisory.Crop][]string{
	advisory.Rice:   {"Rice", "Paddy(Dhan)(Common)", "Paddy(Dhan)(Basmati)"},
	advisory.Wheat:  {"Wheat"},
	advisory.Maize:  {"Maize"},
	advisory.Cotton: {"Cotton", "Kapas"},
	advisory.Pulses: {"Pulses", "Arhar (Tur/Red Gram)(Whole)", "Moong(Whole)", "Masur Dal", "Bengal Gram(Gram)(Whole)"},
}

// CommodityNames returns the market names matched for crop.
func CommodityNames(crop advisory.Crop) []string {
	names := commodityNames[crop]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// DefaultFallbackPrices are support prices per quintal used when no market
// record exists.
func DefaultFallbackPrices() map[advisory.Crop]float64 {
	return map[advisory.Crop]float64{
		advisory.Rice:   2300,
		advisory.Wheat:  2425,
		advisory.Maize:  2225,
		advisory.Cotton: 7121,
		advisory.Pulses: 7550,
	}
}

// PriceProvider quotes crop prices from market data with a table fallback.
type PriceProvider struct {
	store    PriceStore
	fallback map[advisory.Crop]float64
	logger   *slog.Logger
}

// NewPriceProvider returns a provider. A nil fallback disables the table.
func NewPriceProvider(store PriceStore, fallback map[advisory.Crop]float64, logger *slog.Logger) *PriceProvider {
	if logger == nil {
		logger = slog.Default()
	}
	table := make(map[advisory.Crop]float64, len(fallback))
	for crop, amount := range fallback {
		table[crop] = amount
	}
	return &PriceProvider{store: store, fallback: table, logger: logger}
}

// Quote returns the modal price of the newest market record for crop in
// district, else the fallback table entry, else nil.
func (p *PriceProvider) Quote(ctx context.Context, district string, crop advisory.Crop) *advisory.PriceQuote {
	if names := commodityNames[crop]; len(names) > 0 {
		rec, err := p.store.LatestPrice(ctx, district, names...)
		switch {
		case err == nil:
			return &advisory.PriceQuote{Crop: crop, Amount: rec.ModalPrice, Source: advisory.SourceLive}
		case !errors.Is(err, store.ErrNotFound):
			p.logger.Warn("price lookup failed", "district", district, "crop", crop, "error", err)
		}
	}

	if amount, ok := p.fallback[crop]; ok {
		return &advisory.PriceQuote{Crop: crop, Amount: amount, Source: advisory.SourceFallback}
	}
	return nil
}
