package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
)

// Kind selects which sensor family a message carries.
type Kind string

const (
	KindWeather Kind = "weather"
	KindSoil    Kind = "soil"
)

// Message is the JSON payload published by field stations.
type Message struct {
	StationID   string    `json:"station_id"`
	District    string    `json:"district"`
	Kind        Kind      `json:"kind"`
	Timestamp   time.Time `json:"timestamp"`
	Date        string    `json:"date,omitempty"`
	Temperature *float64  `json:"temperature_c,omitempty"`
	Humidity    *float64  `json:"humidity_pct,omitempty"`
	Rainfall    *float64  `json:"rainfall_mm,omitempty"`
	Nitrogen    *int      `json:"nitrogen,omitempty"`
	Phosphorus  *int      `json:"phosphorus,omitempty"`
	Potassium   *int      `json:"potassium,omitempty"`
	PH          *float64  `json:"ph,omitempty"`
}

// Validate checks required fields and sensor ranges.
func (m Message) Validate() error {
	if strings.TrimSpace(m.StationID) == "" {
		return fmt.Errorf("station_id is required")
	}
	if strings.TrimSpace(m.District) == "" {
		return fmt.Errorf("district is required")
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	switch m.Kind {
	case KindWeather:
		if m.Temperature == nil || m.Humidity == nil || m.Rainfall == nil {
			return fmt.Errorf("weather telemetry requires temperature_c, humidity_pct and rainfall_mm")
		}
		if *m.Humidity < 0 || *m.Humidity > 100 {
			return fmt.Errorf("humidity_pct out of range: %f (must be 0-100)", *m.Humidity)
		}
		if *m.Rainfall < 0 {
			return fmt.Errorf("rainfall_mm must not be negative: %f", *m.Rainfall)
		}
		if _, err := advisory.ParseDate(m.Date); err != nil {
			return err
		}
	case KindSoil:
		if m.Nitrogen == nil || m.Phosphorus == nil || m.Potassium == nil || m.PH == nil {
			return fmt.Errorf("soil telemetry requires nitrogen, phosphorus, potassium and ph")
		}
		if *m.Nitrogen < 0 || *m.Phosphorus < 0 || *m.Potassium < 0 {
			return fmt.Errorf("nutrient levels must not be negative")
		}
		if *m.PH < 0 || *m.PH > 14 {
			return fmt.Errorf("ph out of range: %f (must be 0-14)", *m.PH)
		}
	default:
		return fmt.Errorf("unknown kind %q (allowed: weather, soil)", m.Kind)
	}
	return nil
}

// WeatherSample converts a weather message. The day is the explicit date when
// present, else the timestamp's UTC day.
func (m Message) WeatherSample() advisory.WeatherSample {
	day, _ := advisory.ParseDate(m.Date)
	if day.IsZero() {
		day = m.Timestamp.UTC().Truncate(24 * time.Hour)
	}
	return advisory.WeatherSample{
		Date:        day,
		Temperature: deref(m.Temperature),
		Humidity:    deref(m.Humidity),
		Rainfall:    deref(m.Rainfall),
	}
}

// SoilReading converts a soil message.
func (m Message) SoilReading() advisory.SoilReading {
	return advisory.SoilReading{
		Nitrogen:   derefInt(m.Nitrogen),
		Phosphorus: derefInt(m.Phosphorus),
		Potassium:  derefInt(m.Potassium),
		PH:         deref(m.PH),
	}.Clamped()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
