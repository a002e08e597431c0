// Package app wires configuration, storage and services into a runnable
// advisory backend shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cloudwego/eino/components/model"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/config"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/handler"
	farmhandler "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/handler/farm"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/advisor"
	chatservice "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/chat"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/farm"
	intentservice "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/intent"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/telemetry"
)

// App holds the long-lived components of the backend.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Engine  *advisory.Engine
	Chat    *chatservice.Service
	Intent  *intentservice.Service
	Advisor *advisor.Service
	Logger  *slog.Logger
}

// New opens and migrates the store and builds every service. A chat model
// failure only disables the model fallback of the intent classifier.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	langs := Languages(cfg.Advisory)
	engine := advisory.NewEngine(nil)
	if err := engine.Table().Require(langs...); err != nil {
		return nil, fmt.Errorf("configured languages: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	applied, err := st.Migrate(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "versions", applied)
	}

	var chatModel model.ChatModel
	if cfg.AI.IntentLLMEnabled {
		if cfg.AI.Enabled() {
			chatModel, err = cfg.AI.NewChatModel(ctx)
			if err != nil {
				logger.Warn("chat model unavailable, intent classification stays keyword-only", "error", err)
			}
		} else {
			logger.Warn("INTENT_LLM_ENABLED is set but Ark credentials are missing")
		}
	}

	intentSvc, err := intentservice.NewService(ctx, chatModel, intentservice.Config{Enabled: cfg.AI.IntentLLMEnabled}, logger.With("component", "intent"))
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if intentSvc.Enabled() {
		logger.Info("intent model fallback enabled", "model", cfg.AI.Model)
	}

	chatSvc := chatservice.NewService(langs...)
	advisorSvc := advisor.NewService(advisor.Deps{
		Sessions:   chatSvc,
		Weather:    farm.NewWeatherProvider(st, cfg.Advisory.ForecastDays, logger.With("component", "weather")),
		Prices:     farm.NewPriceProvider(st, farm.DefaultFallbackPrices(), logger.With("component", "prices")),
		Soil:       farm.NewSoilProvider(st, logger.With("component", "soil")),
		Classifier: intentSvc,
		Districts:  st,
		Engine:     engine,
		Logger:     logger.With("component", "advisor"),
	})

	return &App{
		Config:  cfg,
		Store:   st,
		Engine:  engine,
		Chat:    chatSvc,
		Intent:  intentSvc,
		Advisor: advisorSvc,
		Logger:  logger,
	}, nil
}

// Languages orders the configured languages with the default first.
func Languages(cfg config.AdvisoryConfig) []advisory.LanguageCode {
	def := advisory.ParseLanguage(cfg.DefaultLanguage)
	out := []advisory.LanguageCode{def}
	for _, raw := range cfg.Languages {
		if l := advisory.ParseLanguage(raw); l != def {
			out = append(out, l)
		}
	}
	return out
}

// Router builds the HTTP handler.
func (a *App) Router() http.Handler {
	return handler.NewRouter(handler.Deps{
		Advisor:    a.Advisor,
		Chat:       a.Chat,
		Store:      a.Store,
		Health:     a.Store,
		Classifier: a.Intent,
		Farm: farmhandler.Options{
			DefaultDistrict: a.Config.Advisory.DefaultDistrict,
			ForecastDays:    a.Config.Advisory.ForecastDays,
			Languages:       Languages(a.Config.Advisory),
		},
		Languages: Languages(a.Config.Advisory),
		Logger:    a.Logger,
	})
}

// StartTelemetry connects the field-station subscriber and stores what it
// receives. It returns nil when telemetry is disabled.
func (a *App) StartTelemetry(ctx context.Context) (*telemetry.Subscriber, error) {
	if !a.Config.MQTT.Enabled {
		return nil, nil
	}
	sub := telemetry.NewSubscriber(a.Config.MQTT, a.Logger.With("component", "telemetry"))
	sub.SetMessageHandler(telemetry.NewStoreHandler(a.Store))
	if err := sub.Connect(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.Store.Close()
}
