package farm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
)

// DefaultSoil is assumed when neither the farmer nor a sensor supplied a reading.
var DefaultSoil = advisory.SoilReading{Nitrogen: 90, Phosphorus: 40, Potassium: 40, PH: 6.5}

// SoilStore reads the newest sensor reading for a district.
type SoilStore interface {
	LatestSoil(ctx context.Context, district string) (store.SoilRecord, error)
}

// SoilProvider serves sensor soil readings.
type SoilProvider struct {
	store  SoilStore
	logger *slog.Logger
}

func NewSoilProvider(store SoilStore, logger *slog.Logger) *SoilProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &SoilProvider{store: store, logger: logger}
}

// LatestSoil returns the newest sensor reading and whether one exists.
func (p *SoilProvider) LatestSoil(ctx context.Context, district string) (advisory.SoilReading, bool) {
	rec, err := p.store.LatestSoil(ctx, district)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.logger.Warn("soil lookup failed", "district", district, "error", err)
		}
		return advisory.SoilReading{}, false
	}
	return rec.Reading, true
}
