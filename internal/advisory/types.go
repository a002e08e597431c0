package advisory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Crop is a recommendation outcome from a closed set.
type Crop string

const (
	Rice   Crop = "Rice"
	Wheat  Crop = "Wheat"
	Maize  Crop = "Maize"
	Cotton Crop = "Cotton"
	Pulses Crop = "Pulses"
)

// Crops lists every crop the rule engine can emit.
func Crops() []Crop {
	return []Crop{Rice, Wheat, Maize, Cotton, Pulses}
}

// ParseCrop matches a crop name case-insensitively.
func ParseCrop(raw string) (Crop, bool) {
	normalized := strings.TrimSpace(raw)
	for _, c := range Crops() {
		if strings.EqualFold(string(c), normalized) {
			return c, true
		}
	}
	return "", false
}

func (c Crop) String() string { return string(c) }

// LanguageCode selects a localization entry.
type LanguageCode string

const (
	English LanguageCode = "en"
	Punjabi LanguageCode = "pa"
)

// ParseLanguage normalizes a language code such as "PA" or "pa-IN" to its base code.
func ParseLanguage(raw string) LanguageCode {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.IndexAny(normalized, "-_"); idx > 0 {
		normalized = normalized[:idx]
	}
	return LanguageCode(normalized)
}

const dateLayout = "2006-01-02"

// WeatherSample is one day of observed weather for a location.
type WeatherSample struct {
	Date        time.Time
	Temperature float64 // °C
	Humidity    float64 // %
	Rainfall    float64 // mm
}

type weatherSampleJSON struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
}

// MarshalJSON encodes Date as a calendar date.
func (w WeatherSample) MarshalJSON() ([]byte, error) {
	payload := weatherSampleJSON{
		Temperature: w.Temperature,
		Humidity:    w.Humidity,
		Rainfall:    w.Rainfall,
	}
	if !w.Date.IsZero() {
		payload.Date = w.Date.Format(dateLayout)
	}
	return json.Marshal(payload)
}

// UnmarshalJSON accepts YYYY-MM-DD, YYYYMMDD or RFC 3339 dates.
func (w *WeatherSample) UnmarshalJSON(data []byte) error {
	var payload weatherSampleJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	date, err := ParseDate(payload.Date)
	if err != nil {
		return err
	}
	*w = WeatherSample{
		Date:        date,
		Temperature: payload.Temperature,
		Humidity:    payload.Humidity,
		Rainfall:    payload.Rainfall,
	}
	return nil
}

// ParseDate parses the date formats used by weather sources. Empty input yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{dateLayout, "20060102", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// SoilReading holds macronutrient levels and pH supplied by the farmer or a field sensor.
type SoilReading struct {
	Nitrogen   int     `json:"nitrogen"`
	Phosphorus int     `json:"phosphorus"`
	Potassium  int     `json:"potassium"`
	PH         float64 `json:"ph"`
}

// Clamped returns the reading with negative nutrients raised to zero and pH limited to [0,14].
// Callers apply it before handing user input to the engine.
func (s SoilReading) Clamped() SoilReading {
	if s.Nitrogen < 0 {
		s.Nitrogen = 0
	}
	if s.Phosphorus < 0 {
		s.Phosphorus = 0
	}
	if s.Potassium < 0 {
		s.Potassium = 0
	}
	if s.PH < 0 {
		s.PH = 0
	}
	if s.PH > 14 {
		s.PH = 14
	}
	return s
}

// PriceSource tells whether a quote came from market data or the built-in table.
type PriceSource string

const (
	SourceLive     PriceSource = "live"
	SourceFallback PriceSource = "fallback"
)

// PriceQuote is a mandi price per quintal.
type PriceQuote struct {
	Crop   Crop        `json:"crop"`
	Amount float64     `json:"amount"`
	Source PriceSource `json:"source"`
}

// Context bundles everything Compose may need for one reply.
type Context struct {
	RecommendedCrop Crop            `json:"recommendedCrop"`
	Price           *PriceQuote     `json:"price,omitempty"`
	Weather         WeatherSample   `json:"weather"`
	Forecast        []WeatherSample `json:"forecast"`
	Soil            SoilReading     `json:"soil"`
}
