package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/handler/farm"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/logging"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/advisor"
	chatservice "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/chat"
	farmservice "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/farm"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func newTestRouter(t *testing.T, health Pinger) http.Handler {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if _, err := st.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if health == nil {
		health = st
	}

	logger := logging.Discard()
	chatSvc := chatservice.NewService(advisory.English, advisory.Punjabi)
	advisorSvc := advisor.NewService(advisor.Deps{
		Sessions:  chatSvc,
		Weather:   farmservice.NewWeatherProvider(st, 6, logger),
		Prices:    farmservice.NewPriceProvider(st, farmservice.DefaultFallbackPrices(), logger),
		Soil:      farmservice.NewSoilProvider(st, logger),
		Districts: st,
		Logger:    logger,
	})
	langs := []advisory.LanguageCode{advisory.English, advisory.Punjabi}
	return NewRouter(Deps{
		Advisor:   advisorSvc,
		Chat:      chatSvc,
		Store:     st,
		Health:    health,
		Farm:      farm.Options{DefaultDistrict: "Ludhiana", ForecastDays: 6, Languages: langs},
		Languages: langs,
		Logger:    logger,
	})
}

func TestRouterMountsAPI(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/healthz", "/api/districts", "/api/advisory/languages", "/api/dashboard?lang=pa"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(`{"district":"Ludhiana"}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestHealthzReportsStoreFailure(t *testing.T) {
	r := newTestRouter(t, failingPinger{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
