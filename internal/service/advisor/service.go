// Package advisor assembles advisory context from the farm providers, runs the
// classifier and composer, and records each exchange in the chat log.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/analysis/intent"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/model/chat"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/farm"
	intentservice "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/intent"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
)

var (
	ErrEmptyQuery      = errors.New("query is required")
	ErrUnknownDistrict = errors.New("unknown district")
)

// Sessions is the chat state the advisor reads and appends to.
type Sessions interface {
	CreateSession(ctx context.Context, district string, lang advisory.LanguageCode) (chat.Session, error)
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	SaveMessage(ctx context.Context, message chat.Message) (chat.Message, error)
	LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error)
}

type WeatherProvider interface {
	Snapshot(ctx context.Context, district string) farm.WeatherSnapshot
}

type PriceProvider interface {
	Quote(ctx context.Context, district string, crop advisory.Crop) *advisory.PriceQuote
}

type SoilProvider interface {
	LatestSoil(ctx context.Context, district string) (advisory.SoilReading, bool)
}

type Classifier interface {
	Classify(ctx context.Context, query string, history []chat.Message) intentservice.Result
}

// Districts validates district names. Optional.
type Districts interface {
	GetDistrict(ctx context.Context, name string) (store.District, error)
}

// Deps wires the service. Engine and Classifier default to the embedded table
// and a keyword-only classifier.
type Deps struct {
	Sessions   Sessions
	Weather    WeatherProvider
	Prices     PriceProvider
	Soil       SoilProvider
	Classifier Classifier
	Districts  Districts
	Engine     *advisory.Engine
	Logger     *slog.Logger
}

// Service answers farmer questions.
type Service struct {
	sessions   Sessions
	weather    WeatherProvider
	prices     PriceProvider
	soil       SoilProvider
	classifier Classifier
	districts  Districts
	engine     *advisory.Engine
	logger     *slog.Logger
}

func NewService(d Deps) *Service {
	if d.Engine == nil {
		d.Engine = advisory.NewEngine(nil)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Classifier == nil {
		d.Classifier = keywordClassifier{}
	}
	return &Service{
		sessions:   d.Sessions,
		weather:    d.Weather,
		prices:     d.Prices,
		soil:       d.Soil,
		classifier: d.Classifier,
		districts:  d.Districts,
		engine:     d.Engine,
		logger:     d.Logger,
	}
}

// Engine exposes the rule engine and its localization table.
func (s *Service) Engine() *advisory.Engine {
	return s.engine
}

type keywordClassifier struct{}

func (keywordClassifier) Classify(_ context.Context, query string, _ []chat.Message) intentservice.Result {
	return intentservice.Result{Intent: intent.Classify(query), Source: intentservice.SourceKeyword, Confidence: 1}
}

// SoilSource tells where the soil values of a context came from.
type SoilSource string

const (
	SoilFromSession SoilSource = "session"
	SoilFromSensor  SoilSource = "sensor"
	SoilDefault     SoilSource = "default"
)

// Assessment is an advisory context together with its provenance.
type Assessment struct {
	District        string           `json:"district"`
	Context         advisory.Context `json:"context"`
	SoilSource      SoilSource       `json:"soilSource"`
	WeatherFallback bool             `json:"weatherFallback"`
}

// Assess gathers weather, soil and price for district. Farmer-supplied soil
// wins over sensor readings, which win over the defaults.
func (s *Service) Assess(ctx context.Context, district string, soil *advisory.SoilReading) Assessment {
	snapshot := s.weather.Snapshot(ctx, district)

	reading, source := farm.DefaultSoil, SoilDefault
	switch {
	case soil != nil:
		reading, source = soil.Clamped(), SoilFromSession
	default:
		if sensed, ok := s.soil.LatestSoil(ctx, district); ok {
			reading, source = sensed, SoilFromSensor
		}
	}

	crop := s.engine.RecommendCrop(reading, snapshot.Current)
	return Assessment{
		District: district,
		Context: advisory.Context{
			RecommendedCrop: crop,
			Price:           s.prices.Quote(ctx, district, crop),
			Weather:         snapshot.Current,
			Forecast:        snapshot.Forecast,
			Soil:            reading,
		},
		SoilSource:      source,
		WeatherFallback: snapshot.Fallback,
	}
}

// ResolveDistrict returns the canonical district name. Without a district
// lookup configured the trimmed input is accepted as is.
func (s *Service) ResolveDistrict(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if s.districts == nil || name == "" {
		return name, nil
	}
	d, err := s.districts.GetDistrict(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrUnknownDistrict, name)
	}
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

// StartSession opens a chat session for a known district.
func (s *Service) StartSession(ctx context.Context, district string, lang advisory.LanguageCode) (chat.Session, error) {
	resolved, err := s.ResolveDistrict(ctx, district)
	if err != nil {
		return chat.Session{}, err
	}
	return s.sessions.CreateSession(ctx, resolved, lang)
}

// Reply is the outcome of one chat turn.
type Reply struct {
	SessionID string                `json:"sessionId"`
	Intent    intent.Intent         `json:"intent"`
	Source    intentservice.Source  `json:"source"`
	Text      string                `json:"text"`
	Crop      advisory.Crop         `json:"crop"`
	Language  advisory.LanguageCode `json:"language"`
	Context   advisory.Context      `json:"context"`
	Question  chat.Message          `json:"question"`
	Answer    chat.Message          `json:"answer"`
}

// Ask answers query in the context of a session and appends both turns to its log.
func (s *Service) Ask(ctx context.Context, sessionID, query string) (Reply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Reply{}, ErrEmptyQuery
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}
	history, err := s.sessions.LoadTranscript(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	assessment := s.Assess(ctx, session.District, session.Soil)
	result := s.classifier.Classify(ctx, query, history)
	text := s.engine.Compose(result.Intent, assessment.Context, session.Language)

	s.logger.Debug("chat turn",
		"session", session.ID,
		"intent", result.Intent,
		"source", result.Source,
		"crop", assessment.Context.RecommendedCrop,
	)

	question, err := s.sessions.SaveMessage(ctx, chat.Message{
		SessionID: session.ID,
		Role:      chat.RoleUser,
		Content:   query,
		Intent:    result.Intent,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("save question: %w", err)
	}
	answer, err := s.sessions.SaveMessage(ctx, chat.Message{
		SessionID: session.ID,
		Role:      chat.RoleAssistant,
		Content:   text,
		Intent:    result.Intent,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("save answer: %w", err)
	}

	return Reply{
		SessionID: session.ID,
		Intent:    result.Intent,
		Source:    result.Source,
		Text:      text,
		Crop:      assessment.Context.RecommendedCrop,
		Language:  session.Language,
		Context:   assessment.Context,
		Question:  question,
		Answer:    answer,
	}, nil
}

// Dashboard is the localized overview for a district.
type Dashboard struct {
	District        string                   `json:"district"`
	Language        advisory.LanguageCode    `json:"language"`
	Labels          advisory.Labels          `json:"labels"`
	Weather         advisory.WeatherSample   `json:"weather"`
	Forecast        []advisory.WeatherSample `json:"forecast"`
	WeatherFallback bool                     `json:"weatherFallback"`
	Soil            advisory.SoilReading     `json:"soil"`
	SoilSource      SoilSource               `json:"soilSource"`
	RecommendedCrop advisory.Crop            `json:"recommendedCrop"`
	Price           *advisory.PriceQuote     `json:"price,omitempty"`
	PriceText       string                   `json:"priceText"`
	WeatherText     string                   `json:"weatherText"`
	Irrigation      string                   `json:"irrigation"`
	Nutrients       string                   `json:"nutrients"`
}

// Dashboard builds the overview for district in lang. Unlike chat replies it
// rejects languages missing from the table.
func (s *Service) Dashboard(ctx context.Context, district string, lang advisory.LanguageCode, soil *advisory.SoilReading) (Dashboard, error) {
	if err := s.engine.Table().Require(lang); err != nil {
		return Dashboard{}, err
	}
	resolved, err := s.ResolveDistrict(ctx, district)
	if err != nil {
		return Dashboard{}, err
	}

	a := s.Assess(ctx, resolved, soil)
	c := a.Context
	return Dashboard{
		District:        resolved,
		Language:        lang,
		Labels:          s.engine.Table().Locale(lang).Labels,
		Weather:         c.Weather,
		Forecast:        c.Forecast,
		WeatherFallback: a.WeatherFallback,
		Soil:            c.Soil,
		SoilSource:      a.SoilSource,
		RecommendedCrop: c.RecommendedCrop,
		Price:           c.Price,
		PriceText:       s.engine.Compose(intent.Price, c, lang),
		WeatherText:     s.engine.Compose(intent.Weather, c, lang),
		Irrigation:      s.engine.IrrigationAdvice(c.RecommendedCrop, c.Forecast, lang),
		Nutrients:       s.engine.NutrientAdvice(c.Soil, lang),
	}, nil
}
