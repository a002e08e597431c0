package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	advisoryModel "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/handler/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/handler/chat"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/handler/farm"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/handler/stream"
	middlewarePkg "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/middleware"
	advisorService "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/advisor"
	chatService "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/chat"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/pkg/utils"
)

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries the services the routes are wired to.
type Deps struct {
	Advisor    *advisorService.Service
	Chat       *chatService.Service
	Store      farm.Store
	Health     Pinger
	Classifier advisory.Classifier
	Farm       farm.Options
	Languages  []advisoryModel.LanguageCode
	Logger     *slog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Health.Ping(ctx); err != nil {
				d.Logger.Warn("health check failed", "error", err)
				utils.RespondError(w, http.StatusServiceUnavailable, "store unavailable")
				return
			}
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	advisoryHandler := advisory.New(d.Advisor.Engine(), d.Classifier, d.Languages...)
	chatHandler := chat.New(d.Advisor, d.Chat, d.Logger)
	farmHandler := farm.New(d.Store, d.Advisor, d.Farm, d.Logger)
	streamHandler := stream.New(d.Advisor, d.Chat, d.Logger)

	r.Route("/api", func(api chi.Router) {
		advisoryHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		farmHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
	})

	return r
}
