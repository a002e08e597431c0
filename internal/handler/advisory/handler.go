package advisory

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/analysis/intent"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/model/chat"
	intentservice "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/intent"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/pkg/utils"
)

// Classifier resolves a query to an intent.
type Classifier interface {
	Classify(ctx context.Context, query string, history []chat.Message) intentservice.Result
}

// Handler exposes the rule engine and composer without any session state.
type Handler struct {
	engine     *advisory.Engine
	classifier Classifier
	languages  advisory.Languages
}

// New creates the handler. A nil classifier uses keyword matching only.
// Without languages every locale of the engine table is served, English first.
func New(engine *advisory.Engine, classifier Classifier, languages ...advisory.LanguageCode) *Handler {
	if engine == nil {
		engine = advisory.NewEngine(nil)
	}
	if len(languages) == 0 {
		languages = append([]advisory.LanguageCode{advisory.English}, engine.Table().Languages()...)
	}
	return &Handler{engine: engine, classifier: classifier, languages: advisory.NewLanguages(languages...)}
}

// RegisterRoutes registers the engine routes under /advisory.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/advisory", func(r chi.Router) {
		r.Get("/languages", h.handleLanguages)
		r.Post("/recommend", h.handleRecommend)
		r.Post("/irrigation", h.handleIrrigation)
		r.Post("/nutrients", h.handleNutrients)
		r.Post("/classify", h.handleClassify)
		r.Post("/compose", h.handleCompose)
	})
}

type languageInfo struct {
	Code      advisory.LanguageCode `json:"code"`
	Name      string                `json:"name"`
	SpeechTag string                `json:"speechTag"`
	Labels    advisory.Labels       `json:"labels"`
}

func (h *Handler) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	table := h.engine.Table()
	codes := h.languages.Codes()
	out := make([]languageInfo, 0, len(codes))
	for _, code := range codes {
		loc := table.Locale(code)
		out = append(out, languageInfo{Code: code, Name: loc.Name, SpeechTag: loc.SpeechTag, Labels: loc.Labels})
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Soil    advisory.SoilReading   `json:"soil"`
		Weather advisory.WeatherSample `json:"weather"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	soil := payload.Soil.Clamped()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"crop": h.engine.RecommendCrop(soil, payload.Weather),
		"soil": soil,
	})
}

func (h *Handler) handleIrrigation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Crop     string                   `json:"crop"`
		Forecast []advisory.WeatherSample `json:"forecast"`
		Language string                   `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	crop, ok := advisory.ParseCrop(payload.Crop)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("unknown crop %q", payload.Crop))
		return
	}
	lang, err := h.language(payload.Language)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"advice":   h.engine.IrrigationAdvice(crop, payload.Forecast, lang),
		"rainNext": advisory.RainNext3(payload.Forecast),
		"language": lang,
	})
}

func (h *Handler) handleNutrients(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Soil     advisory.SoilReading `json:"soil"`
		Language string               `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	lang, err := h.language(payload.Language)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"advice":   h.engine.NutrientAdvice(payload.Soil.Clamped(), lang),
		"language": lang,
	})
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := intentservice.Result{Intent: intent.Classify(payload.Query), Source: intentservice.SourceKeyword, Confidence: 1}
	if h.classifier != nil {
		result = h.classifier.Classify(r.Context(), payload.Query, nil)
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCompose(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Intent   string           `json:"intent"`
		Context  advisory.Context `json:"context"`
		Language string           `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, ok := intent.Parse(payload.Intent)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("unknown intent %q", payload.Intent))
		return
	}
	crop, ok := advisory.ParseCrop(string(payload.Context.RecommendedCrop))
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("unknown crop %q", payload.Context.RecommendedCrop))
		return
	}
	payload.Context.RecommendedCrop = crop
	lang, err := h.language(payload.Language)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"intent":   in,
		"reply":    h.engine.Compose(in, payload.Context, lang),
		"language": lang,
	})
}

// language resolves raw against the served set and the table.
func (h *Handler) language(raw string) (advisory.LanguageCode, error) {
	lang, err := h.languages.Resolve(advisory.ParseLanguage(raw))
	if err != nil {
		return "", err
	}
	if err := h.engine.Table().Require(lang); err != nil {
		return "", err
	}
	return lang, nil
}
