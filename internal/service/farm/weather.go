// Package farm adapts stored field data into the inputs the advisory engine
// consumes. Store failures degrade to fallback values and are only logged.
package farm

import (
	"context"
	"log/slog"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
)

// Fallback conditions used when a district has no weather history.
const (
	fallbackTemperature = 25.0
	fallbackHumidity    = 70.0
	fallbackRainfall    = 100.0
)

// WeatherStore reads daily samples, oldest to newest.
type WeatherStore interface {
	RecentWeather(ctx context.Context, district string, limit int) ([]advisory.WeatherSample, error)
}

// WeatherSnapshot is the current day plus the recent daily series.
type WeatherSnapshot struct {
	Current  advisory.WeatherSample   `json:"current"`
	Forecast []advisory.WeatherSample `json:"forecast"`
	Fallback bool                     `json:"fallback"`
}

// WeatherProvider serves weather snapshots from the store.
type WeatherProvider struct {
	store  WeatherStore
	days   int
	logger *slog.Logger
	now    func() time.Time
}

// NewWeatherProvider returns a provider reading up to days samples per district.
func NewWeatherProvider(store WeatherStore, days int, logger *slog.Logger) *WeatherProvider {
	if days < 1 {
		days = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherProvider{
		store:  store,
		days:   days,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot returns the latest samples for district. The newest sample is the
// current weather. Without history it returns a fixed fallback day and an
// empty forecast, so irrigation advice reports missing data.
func (p *WeatherProvider) Snapshot(ctx context.Context, district string) WeatherSnapshot {
	samples, err := p.store.RecentWeather(ctx, district, p.days)
	if err != nil {
		p.logger.Warn("weather lookup failed, using fallback", "district", district, "error", err)
	}
	if err != nil || len(samples) == 0 {
		return p.fallback()
	}
	return WeatherSnapshot{
		Current:  samples[len(samples)-1],
		Forecast: samples,
	}
}

func (p *WeatherProvider) fallback() WeatherSnapshot {
	today := p.now().UTC().Truncate(24 * time.Hour)
	return WeatherSnapshot{
		Current: advisory.WeatherSample{
			Date:        today,
			Temperature: fallbackTemperature,
			Humidity:    fallbackHumidity,
			Rainfall:    fallbackRainfall,
		},
		Forecast: []advisory.WeatherSample{},
		Fallback: true,
	}
}
