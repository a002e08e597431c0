package farm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/advisor"
	farmservice "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/farm"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/pkg/utils"
)

const (
	defaultPriceLimit = 20
	maxListLimit      = 100
	maxBodyBytes      = 1 << 20
)

// Store is the persistence the farm endpoints read and write.
type Store interface {
	ListDistricts(ctx context.Context) ([]store.District, error)
	RecentWeather(ctx context.Context, district string, limit int) ([]advisory.WeatherSample, error)
	UpsertWeather(ctx context.Context, district string, sample advisory.WeatherSample) error
	ListPrices(ctx context.Context, district string, limit int) ([]store.MandiPrice, error)
	UpsertPrice(ctx context.Context, p store.MandiPrice) error
}

// Options carries the request defaults. The first of Languages is the
// dashboard default; with none only English is served.
type Options struct {
	DefaultDistrict string
	ForecastDays    int
	Languages       []advisory.LanguageCode
}

// Handler serves the dashboard and the weather and price feeds.
type Handler struct {
	store   Store
	advisor *advisor.Service
	opts    Options
	langs   advisory.Languages
	logger  *slog.Logger
}

// New creates the farm handler.
func New(st Store, advisorSvc *advisor.Service, opts Options, logger *slog.Logger) *Handler {
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = 6
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: st, advisor: advisorSvc, opts: opts, langs: advisory.NewLanguages(opts.Languages...), logger: logger.With("component", "farm")}
}

// RegisterRoutes registers the farm data routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/districts", h.handleDistricts)
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/weather", h.handleListWeather)
	r.Post("/weather", h.handleRecordWeather)
	r.Get("/prices", h.handleListPrices)
	r.Post("/prices", h.handleRecordPrice)
}

func (h *Handler) handleDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.store.ListDistricts(r.Context())
	if err != nil {
		h.internal(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, districts)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	soil, err := soilFromQuery(q.Get("nitrogen"), q.Get("phosphorus"), q.Get("potassium"), q.Get("ph"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	lang, err := h.langs.Resolve(advisory.ParseLanguage(q.Get("lang")))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	dashboard, err := h.advisor.Dashboard(r.Context(), h.district(q.Get("district")), lang, soil)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, dashboard)
}

// soilFromQuery returns nil when no value is given. Missing values of a
// partial reading take the district defaults.
func soilFromQuery(n, p, k, ph string) (*advisory.SoilReading, error) {
	if n == "" && p == "" && k == "" && ph == "" {
		return nil, nil
	}
	soil := farmservice.DefaultSoil

	for _, f := range []struct {
		name string
		raw  string
		dst  *int
	}{
		{"nitrogen", n, &soil.Nitrogen},
		{"phosphorus", p, &soil.Phosphorus},
		{"potassium", k, &soil.Potassium},
	} {
		if f.raw == "" {
			continue
		}
		v, err := strconv.Atoi(f.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", f.name, f.raw)
		}
		*f.dst = v
	}
	if ph != "" {
		v, err := strconv.ParseFloat(ph, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ph value %q", ph)
		}
		soil.PH = v
	}

	clamped := soil.Clamped()
	return &clamped, nil
}

func (h *Handler) handleListWeather(w http.ResponseWriter, r *http.Request) {
	days, err := parseLimit(r.URL.Query().Get("days"), h.opts.ForecastDays)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	district, err := h.advisor.ResolveDistrict(r.Context(), h.district(r.URL.Query().Get("district")))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	samples, err := h.store.RecentWeather(r.Context(), district, days)
	if err != nil {
		h.internal(w, err)
		return
	}
	if samples == nil {
		samples = []advisory.WeatherSample{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"district": district,
		"samples":  samples,
	})
}

func (h *Handler) handleRecordWeather(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The sample decodes its own date formats, so the district is read in a
	// separate pass over the same body.
	var target struct {
		District string `json:"district"`
	}
	var sample advisory.WeatherSample
	if err := json.Unmarshal(body, &target); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := json.Unmarshal(body, &sample); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateSample(sample); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	district, err := h.advisor.ResolveDistrict(r.Context(), target.District)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if district == "" {
		utils.RespondError(w, http.StatusBadRequest, "district is required")
		return
	}

	if err := h.store.UpsertWeather(r.Context(), district, sample); err != nil {
		h.internal(w, err)
		return
	}
	h.logger.Info("weather recorded", "district", district, "date", sample.Date.Format("2006-01-02"))
	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"district": district,
		"sample":   sample,
	})
}

func validateSample(s advisory.WeatherSample) error {
	switch {
	case s.Date.IsZero():
		return errors.New("date is required")
	case s.Humidity < 0 || s.Humidity > 100:
		return fmt.Errorf("humidity %v out of range 0-100", s.Humidity)
	case s.Rainfall < 0:
		return fmt.Errorf("rainfall %v must not be negative", s.Rainfall)
	}
	return nil
}

func (h *Handler) handleListPrices(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultPriceLimit)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	district, err := h.advisor.ResolveDistrict(r.Context(), h.district(r.URL.Query().Get("district")))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	prices, err := h.store.ListPrices(r.Context(), district, limit)
	if err != nil {
		h.internal(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"district": district,
		"prices":   prices,
	})
}

func (h *Handler) handleRecordPrice(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		District    string  `json:"district"`
		Market      string  `json:"market"`
		Commodity   string  `json:"commodity"`
		MinPrice    float64 `json:"minPrice"`
		MaxPrice    float64 `json:"maxPrice"`
		ModalPrice  float64 `json:"modalPrice"`
		ArrivalDate string  `json:"arrivalDate"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	arrival, err := advisory.ParseDate(payload.ArrivalDate)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	price := store.MandiPrice{
		Market:      strings.TrimSpace(payload.Market),
		Commodity:   strings.TrimSpace(payload.Commodity),
		MinPrice:    payload.MinPrice,
		MaxPrice:    payload.MaxPrice,
		ModalPrice:  payload.ModalPrice,
		ArrivalDate: arrival,
	}
	if err := validatePrice(price); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	price.District, err = h.advisor.ResolveDistrict(r.Context(), payload.District)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if price.District == "" {
		utils.RespondError(w, http.StatusBadRequest, "district is required")
		return
	}

	if err := h.store.UpsertPrice(r.Context(), price); err != nil {
		h.internal(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, price)
}

func validatePrice(p store.MandiPrice) error {
	switch {
	case p.Market == "" || p.Commodity == "":
		return errors.New("market and commodity are required")
	case p.ArrivalDate.IsZero():
		return errors.New("arrivalDate is required")
	case p.ModalPrice <= 0:
		return errors.New("modalPrice must be positive")
	case p.MinPrice < 0 || p.MaxPrice < 0:
		return errors.New("prices must not be negative")
	case p.MaxPrice > 0 && p.MinPrice > p.MaxPrice:
		return errors.New("minPrice exceeds maxPrice")
	}
	return nil
}

func parseLimit(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxListLimit {
		return 0, fmt.Errorf("invalid limit %q (allowed: 1-%d)", raw, maxListLimit)
	}
	return n, nil
}

func (h *Handler) district(raw string) string {
	if raw = strings.TrimSpace(raw); raw != "" {
		return raw
	}
	return h.opts.DefaultDistrict
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, advisor.ErrUnknownDistrict), errors.Is(err, advisory.ErrUnsupportedLanguage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.internal(w, err)
	}
}

func (h *Handler) internal(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", "error", err)
	utils.RespondError(w, http.StatusInternalServerError, "internal error")
}
