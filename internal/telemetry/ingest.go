package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
)

// Sink persists validated telemetry.
type Sink interface {
	UpsertWeather(ctx context.Context, district string, sample advisory.WeatherSample) error
	InsertSoil(ctx context.Context, rec store.SoilRecord) error
}

// storeTimeout bounds one write triggered by an MQTT callback.
const storeTimeout = 5 * time.Second

// NewStoreHandler returns a message handler writing into sink.
func NewStoreHandler(sink Sink) func(Message) error {
	return func(m Message) error {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		switch m.Kind {
		case KindWeather:
			return sink.UpsertWeather(ctx, m.District, m.WeatherSample())
		case KindSoil:
			return sink.InsertSoil(ctx, store.SoilRecord{
				District:   m.District,
				StationID:  m.StationID,
				RecordedAt: m.Timestamp,
				Reading:    m.SoilReading(),
			})
		default:
			return fmt.Errorf("unknown kind %q", m.Kind)
		}
	}
}
