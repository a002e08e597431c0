package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/config"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/logging"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
)

func float(v float64) *float64 { return &v }
func integer(v int) *int       { return &v }

var ts = time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)

func weatherMessage() Message {
	return Message{
		StationID:   "ldh-01",
		District:    "Ludhiana",
		Kind:        KindWeather,
		Timestamp:   ts,
		Temperature: float(24.5),
		Humidity:    float(66),
		Rainfall:    float(3.2),
	}
}

func soilMessage() Message {
	return Message{
		StationID:  "ldh-02",
		District:   "Ludhiana",
		Kind:       KindSoil,
		Timestamp:  ts,
		Nitrogen:   integer(110),
		Phosphorus: integer(42),
		Potassium:  integer(55),
		PH:         float(7.1),
	}
}

func TestValidate(t *testing.T) {
	if err := weatherMessage().Validate(); err != nil {
		t.Fatalf("weather should be valid: %v", err)
	}
	if err := soilMessage().Validate(); err != nil {
		t.Fatalf("soil should be valid: %v", err)
	}

	cases := map[string]func(*Message){
		"missing station":   func(m *Message) { m.StationID = "" },
		"missing district":  func(m *Message) { m.District = " " },
		"missing timestamp": func(m *Message) { m.Timestamp = time.Time{} },
		"unknown kind":      func(m *Message) { m.Kind = "pressure" },
		"humidity high":     func(m *Message) { m.Humidity = float(101) },
		"humidity low":      func(m *Message) { m.Humidity = float(-1) },
		"negative rain":     func(m *Message) { m.Rainfall = float(-0.1) },
		"missing rain":      func(m *Message) { m.Rainfall = nil },
		"bad date":          func(m *Message) { m.Date = "02/11/2024" },
	}
	for name, mutate := range cases {
		m := weatherMessage()
		mutate(&m)
		if err := m.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	soilCases := map[string]func(*Message){
		"negative nitrogen": func(m *Message) { m.Nitrogen = integer(-1) },
		"ph high":           func(m *Message) { m.PH = float(14.5) },
		"missing potassium": func(m *Message) { m.Potassium = nil },
	}
	for name, mutate := range soilCases {
		m := soilMessage()
		mutate(&m)
		if err := m.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestWeatherSampleDay(t *testing.T) {
	m := weatherMessage()
	if got := m.WeatherSample().Date; !got.Equal(time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day %v", got)
	}
	m.Date = "20241030"
	if got := m.WeatherSample().Date; !got.Equal(time.Date(2024, 10, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("explicit date should win, got %v", got)
	}
}

func newTestSubscriber(handler func(Message) error) *Subscriber {
	s := NewSubscriber(config.MQTTConfig{Broker: "localhost", Port: 1883, ClientID: "test", Topic: "farm/+/telemetry"}, logging.Discard())
	s.SetMessageHandler(handler)
	return s
}

func TestHandleMessageDispatchesValidPayloads(t *testing.T) {
	var got []Message
	s := newTestSubscriber(func(m Message) error {
		got = append(got, m)
		return nil
	})

	s.handleMessage("farm/ldh-01/telemetry", []byte(`{"station_id":"ldh-01","district":"Ludhiana","kind":"weather",
		"timestamp":"2024-11-02T09:30:00Z","temperature_c":24.5,"humidity_pct":66,"rainfall_mm":3.2}`))
	s.handleMessage("farm/ldh-01/telemetry", []byte(`not json`))
	s.handleMessage("farm/ldh-01/telemetry", []byte(`{"station_id":"ldh-01","district":"Ludhiana","kind":"weather",
		"timestamp":"2024-11-02T09:30:00Z","temperature_c":24.5,"humidity_pct":160,"rainfall_mm":3.2}`))

	if len(got) != 1 {
		t.Fatalf("expected one dispatched message, got %d", len(got))
	}
	if got[0].StationID != "ldh-01" || *got[0].Temperature != 24.5 {
		t.Fatalf("unexpected message %+v", got[0])
	}
}

func TestHandleMessageSurvivesHandlerError(t *testing.T) {
	calls := 0
	s := newTestSubscriber(func(Message) error {
		calls++
		return errors.New("db locked")
	})
	payload := []byte(`{"station_id":"a","district":"Patiala","kind":"soil","timestamp":"2024-11-02T09:30:00Z",
		"nitrogen":10,"phosphorus":10,"potassium":10,"ph":6.2}`)
	s.handleMessage("t", payload)
	s.handleMessage("t", payload)
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	s := newTestSubscriber(nil)
	s.Disconnect()
	s.Disconnect()
	if err := s.Connect(context.Background()); err == nil {
		t.Fatal("Connect after Disconnect should fail")
	}
}

func TestStoreHandler(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer st.Close()
	if _, err := st.Migrate(ctx); err != nil {
		t.Fatalf("Migrate err: %v", err)
	}

	handle := NewStoreHandler(st)
	if err := handle(weatherMessage()); err != nil {
		t.Fatalf("weather handler err: %v", err)
	}
	later := weatherMessage()
	later.Timestamp = ts.Add(3 * time.Hour)
	later.Rainfall = float(8)
	if err := handle(later); err != nil {
		t.Fatalf("weather handler err: %v", err)
	}
	if err := handle(soilMessage()); err != nil {
		t.Fatalf("soil handler err: %v", err)
	}

	samples, err := st.RecentWeather(ctx, "Ludhiana", 6)
	if err != nil {
		t.Fatalf("RecentWeather err: %v", err)
	}
	if len(samples) != 1 || samples[0].Rainfall != 8 {
		t.Fatalf("same-day telemetry should upsert, got %+v", samples)
	}

	soil, err := st.LatestSoil(ctx, "Ludhiana")
	if err != nil {
		t.Fatalf("LatestSoil err: %v", err)
	}
	want := advisory.SoilReading{Nitrogen: 110, Phosphorus: 42, Potassium: 55, PH: 7.1}
	if soil.Reading != want || soil.StationID != "ldh-02" {
		t.Fatalf("unexpected soil %+v", soil)
	}
}
