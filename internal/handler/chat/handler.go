package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/advisor"
	chatService "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/chat"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/pkg/utils"
)

// Handler serves chat sessions and turns over HTTP and websocket.
type Handler struct {
	advisor  *advisor.Service
	chatSvc  *chatService.Service
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates the chat handler.
func New(advisorSvc *advisor.Service, chatSvc *chatService.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		advisor: advisorSvc,
		chatSvc: chatSvc,
		logger:  logger.With("component", "chat"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the session, message and websocket routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Put("/soil", h.handleSetSoil)
		r.Put("/language", h.handleSetLanguage)
		r.Put("/district", h.handleSetDistrict)
		r.Get("/messages", h.handleTranscript)
	})
	r.Post("/messages", h.handleAsk)
	r.Get("/chat/ws/{sessionID}", h.handleWebSocket)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		District string `json:"district"`
		Language string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.advisor.StartSession(r.Context(), payload.District, advisory.ParseLanguage(payload.Language))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.logger.Info("session created", "session", session.ID, "district", session.District, "language", session.Language)
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSetSoil(w http.ResponseWriter, r *http.Request) {
	var soil *advisory.SoilReading
	if err := utils.DecodeJSON(r, &soil); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.chatSvc.SetSoil(r.Context(), chi.URLParam(r, "sessionID"), soil)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Language string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.chatSvc.SetLanguage(r.Context(), chi.URLParam(r, "sessionID"), advisory.ParseLanguage(payload.Language))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSetDistrict(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		District string `json:"district"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	district, err := h.advisor.ResolveDistrict(r.Context(), payload.District)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	session, err := h.chatSvc.SetDistrict(r.Context(), chi.URLParam(r, "sessionID"), district)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Content   string `json:"content"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.advisor.Ask(r.Context(), payload.SessionID, payload.Content)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		utils.RespondError(w, status, "internal error")
		return
	}
	utils.RespondError(w, status, err.Error())
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrDistrictRequired),
		errors.Is(err, advisor.ErrUnknownDistrict),
		errors.Is(err, advisor.ErrEmptyQuery),
		errors.Is(err, advisory.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
