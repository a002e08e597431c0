package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if _, err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate err: %v", err)
	}
	return s
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "")
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer s.Close()

	first, err := s.Migrate(ctx)
	if err != nil {
		t.Fatalf("first Migrate err: %v", err)
	}
	if len(first) != 2 || first[0] != "0001" || first[1] != "0002" {
		t.Fatalf("unexpected applied versions %v", first)
	}

	second, err := s.Migrate(ctx)
	if err != nil {
		t.Fatalf("second Migrate err: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected nothing to apply, got %v", second)
	}
}

func TestOpenFileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "advisory.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	if _, err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate err: %v", err)
	}
	if err := s.UpsertWeather(ctx, "Ludhiana", advisory.WeatherSample{Date: day("2024-11-02"), Temperature: 22}); err != nil {
		t.Fatalf("UpsertWeather err: %v", err)
	}
	_ = s.Close()

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen err: %v", err)
	}
	defer reopened.Close()
	samples, err := reopened.RecentWeather(ctx, "Ludhiana", 5)
	if err != nil {
		t.Fatalf("RecentWeather err: %v", err)
	}
	if len(samples) != 1 || samples[0].Temperature != 22 {
		t.Fatalf("data not persisted: %+v", samples)
	}
}

func TestDistrictsSeeded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	districts, err := s.ListDistricts(ctx)
	if err != nil {
		t.Fatalf("ListDistricts err: %v", err)
	}
	if len(districts) != 7 || districts[0].Name != "Amritsar" {
		t.Fatalf("unexpected districts %+v", districts)
	}

	d, err := s.GetDistrict(ctx, "ludhiana")
	if err != nil {
		t.Fatalf("GetDistrict err: %v", err)
	}
	if d.Name != "Ludhiana" || d.Latitude != 30.901 || d.Longitude != 75.857 {
		t.Fatalf("unexpected district %+v", d)
	}

	if _, err := s.GetDistrict(ctx, "Chandigarh"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWeatherUpsertAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, d := range []string{"2024-11-03", "2024-11-01", "2024-11-04", "2024-11-02"} {
		sample := advisory.WeatherSample{Date: day(d), Temperature: float64(20 + i), Humidity: 60, Rainfall: 1}
		if err := s.UpsertWeather(ctx, "Patiala", sample); err != nil {
			t.Fatalf("UpsertWeather err: %v", err)
		}
	}
	// Replaces 2024-11-04.
	if err := s.UpsertWeather(ctx, "patiala", advisory.WeatherSample{Date: day("2024-11-04"), Temperature: 31, Rainfall: 9}); err != nil {
		t.Fatalf("UpsertWeather err: %v", err)
	}

	samples, err := s.RecentWeather(ctx, "Patiala", 3)
	if err != nil {
		t.Fatalf("RecentWeather err: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	wantDays := []string{"2024-11-02", "2024-11-03", "2024-11-04"}
	for i, want := range wantDays {
		if got := samples[i].Date.Format("2006-01-02"); got != want {
			t.Fatalf("sample %d: got day %s, want %s", i, got, want)
		}
	}
	if last := samples[2]; last.Temperature != 31 || last.Rainfall != 9 {
		t.Fatalf("upsert did not replace sample: %+v", last)
	}

	if err := s.UpsertWeather(ctx, "Patiala", advisory.WeatherSample{}); err == nil {
		t.Fatal("expected error for missing date")
	}
	empty, err := s.RecentWeather(ctx, "Bathinda", 6)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no samples, got %v, %v", empty, err)
	}
}

func TestSoilLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestSoil(ctx, "Amritsar"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	base := time.Date(2024, 11, 1, 6, 0, 0, 0, time.UTC)
	records := []SoilRecord{
		{District: "Amritsar", StationID: "st-1", RecordedAt: base.Add(2 * time.Hour), Reading: advisory.SoilReading{Nitrogen: 110, Phosphorus: 40, Potassium: 45, PH: 15}},
		{District: "Amritsar", StationID: "st-2", RecordedAt: base, Reading: advisory.SoilReading{Nitrogen: 80}},
		{District: "Jalandhar", StationID: "st-3", RecordedAt: base.Add(5 * time.Hour), Reading: advisory.SoilReading{Nitrogen: 10}},
	}
	for _, rec := range records {
		if err := s.InsertSoil(ctx, rec); err != nil {
			t.Fatalf("InsertSoil err: %v", err)
		}
	}

	got, err := s.LatestSoil(ctx, "Amritsar")
	if err != nil {
		t.Fatalf("LatestSoil err: %v", err)
	}
	if got.StationID != "st-1" || got.Reading.Nitrogen != 110 || got.Reading.PH != 14 {
		t.Fatalf("unexpected latest soil %+v", got)
	}
	if !got.RecordedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected timestamp %v", got.RecordedAt)
	}
}

func TestSoilLatestWithinSameSecond(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	whole := time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)
	later := whole.Add(500 * time.Millisecond)
	for _, rec := range []SoilRecord{
		{District: "Ludhiana", StationID: "st-1", RecordedAt: later, Reading: advisory.SoilReading{Nitrogen: 2}},
		{District: "Ludhiana", StationID: "st-1", RecordedAt: whole, Reading: advisory.SoilReading{Nitrogen: 1}},
	} {
		if err := s.InsertSoil(ctx, rec); err != nil {
			t.Fatalf("InsertSoil err: %v", err)
		}
	}

	got, err := s.LatestSoil(ctx, "Ludhiana")
	if err != nil {
		t.Fatalf("LatestSoil err: %v", err)
	}
	if got.Reading.Nitrogen != 2 || !got.RecordedAt.Equal(later) {
		t.Fatalf("expected reading at %v, got N=%d at %v", later, got.Reading.Nitrogen, got.RecordedAt)
	}
}

func TestPrices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prices := []MandiPrice{
		{District: "Ludhiana", Market: "Khanna", Commodity: "Wheat", MinPrice: 2200, MaxPrice: 2350, ModalPrice: 2275, ArrivalDate: day("2024-11-02")},
		{District: "Ludhiana", Market: "Jagraon", Commodity: "Wheat", MinPrice: 2150, MaxPrice: 2300, ModalPrice: 2250, ArrivalDate: day("2024-11-01")},
		{District: "Ludhiana", Market: "Khanna", Commodity: "Paddy(Dhan)(Common)", MinPrice: 2100, MaxPrice: 2320, ModalPrice: 2300, ArrivalDate: day("2024-11-01")},
		{District: "Patiala", Market: "Rajpura", Commodity: "Wheat", ModalPrice: 2400, ArrivalDate: day("2024-11-05")},
	}
	for _, p := range prices {
		if err := s.UpsertPrice(ctx, p); err != nil {
			t.Fatalf("UpsertPrice err: %v", err)
		}
	}
	// Same market, commodity and day replaces the record.
	update := prices[0]
	update.ModalPrice = 2290
	if err := s.UpsertPrice(ctx, update); err != nil {
		t.Fatalf("UpsertPrice err: %v", err)
	}

	got, err := s.LatestPrice(ctx, "Ludhiana", "wheat")
	if err != nil {
		t.Fatalf("LatestPrice err: %v", err)
	}
	if got.Market != "Khanna" || got.ModalPrice != 2290 {
		t.Fatalf("unexpected latest price %+v", got)
	}

	rice, err := s.LatestPrice(ctx, "Ludhiana", "Rice", "Paddy(Dhan)(Common)")
	if err != nil {
		t.Fatalf("LatestPrice rice err: %v", err)
	}
	if rice.ModalPrice != 2300 {
		t.Fatalf("unexpected rice price %+v", rice)
	}

	if _, err := s.LatestPrice(ctx, "Ludhiana", "Cotton"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.LatestPrice(ctx, "Ludhiana"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without commodities, got %v", err)
	}

	list, err := s.ListPrices(ctx, "Ludhiana", 10)
	if err != nil {
		t.Fatalf("ListPrices err: %v", err)
	}
	if len(list) != 3 || !list[0].ArrivalDate.Equal(day("2024-11-02")) {
		t.Fatalf("unexpected list %+v", list)
	}
}
