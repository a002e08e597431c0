package advisory

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/analysis/intent"
)

func sampleContext() Context {
	return Context{
		RecommendedCrop: Wheat,
		Price:           &PriceQuote{Crop: Wheat, Amount: 2275, Source: SourceLive},
		Weather:         WeatherSample{Temperature: 28.4, Humidity: 61, Rainfall: 2.5},
		Forecast: []WeatherSample{
			{Rainfall: 1, Temperature: 27, Humidity: 60},
			{Rainfall: 0, Temperature: 28, Humidity: 58},
			{Rainfall: 2.5, Temperature: 28.4, Humidity: 61},
		},
		Soil: SoilReading{Nitrogen: 120, Phosphorus: 50, Potassium: 50, PH: 6.8},
	}
}

func TestEveryIntentHasComposer(t *testing.T) {
	for _, in := range intent.All() {
		if _, ok := composers[in]; !ok {
			t.Fatalf("no composer for intent %s", in)
		}
	}
}

func TestComposeRoundTripPunjabiPrice(t *testing.T) {
	ctx := sampleContext()
	q := "what's the ਭਾਅ today"

	got := Compose(intent.Classify(q), ctx, Punjabi)
	if !strings.Contains(got, "Wheat") || !strings.Contains(got, "2275") || !strings.Contains(got, "ਕੁਇੰਟਲ") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if got != "Wheat ਭਾਅ: ₹2275/ਕੁਇੰਟਲ" {
		t.Fatalf("unexpected reply format: %q", got)
	}
}

func TestComposePriceEnglishAndMissing(t *testing.T) {
	ctx := sampleContext()
	if got := Compose(intent.Price, ctx, English); got != "Price of Wheat: ₹2275/quintal" {
		t.Fatalf("unexpected reply: %q", got)
	}

	ctx.Price = nil
	got := Compose(intent.Price, ctx, English)
	if got != "Price of Wheat: not available" {
		t.Fatalf("unexpected reply for missing price: %q", got)
	}
	if pa := Compose(intent.Price, ctx, Punjabi); pa != "Wheat ਭਾਅ: ਉਪਲਬਧ ਨਹੀਂ" {
		t.Fatalf("unexpected punjabi reply: %q", pa)
	}
}

func TestComposeWeather(t *testing.T) {
	ctx := sampleContext()
	if got := Compose(intent.Weather, ctx, English); got != "28.4°C, 61% humidity, 2.5mm rain" {
		t.Fatalf("unexpected reply: %q", got)
	}
	if got := Compose(intent.Weather, ctx, Punjabi); got != "28.4°C, 61% ਨਮੀ, 2.5 ਮਿਮੀ ਮੀਂਹ" {
		t.Fatalf("unexpected punjabi reply: %q", got)
	}
}

func TestComposeDelegatesToRules(t *testing.T) {
	ctx := sampleContext()
	if got, want := Compose(intent.Irrigation, ctx, English), IrrigationAdvice(Wheat, ctx.Forecast, English); got != want {
		t.Fatalf("irrigation: got %q, want %q", got, want)
	}
	if got, want := Compose(intent.Soil, ctx, Punjabi), NutrientAdvice(ctx.Soil, Punjabi); got != want {
		t.Fatalf("soil: got %q, want %q", got, want)
	}
}

func TestComposeUnknownFallback(t *testing.T) {
	q := "mausam kal kaisa hoga"
	in := intent.Classify(q)
	if in != intent.Unknown {
		t.Fatalf("expected unknown, got %s", in)
	}
	want := DefaultTable().Locale(English).Messages.Fallback
	if got := Compose(in, sampleContext(), English); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := Compose(intent.Intent("harvest"), sampleContext(), English); got != want {
		t.Fatalf("unlisted intent should fall back, got %q", got)
	}
}

func TestComposeUnsupportedLanguageUsesEnglish(t *testing.T) {
	got := Compose(intent.Unknown, sampleContext(), LanguageCode("hi"))
	if got != DefaultTable().Locale(English).Messages.Fallback {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestWeatherSampleJSON(t *testing.T) {
	var sample WeatherSample
	if err := json.Unmarshal([]byte(`{"date":"20240105","temperature":12.5,"humidity":80,"rainfall":0.4}`), &sample); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if !sample.Date.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", sample.Date)
	}

	data, err := json.Marshal(sample)
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}
	if !strings.Contains(string(data), `"date":"2024-01-05"`) {
		t.Fatalf("unexpected json %s", data)
	}

	if err := json.Unmarshal([]byte(`{"date":"yesterday"}`), &sample); err == nil {
		t.Fatal("expected invalid date error")
	}
}
