package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/model/chat"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/advisor"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/pkg/utils"
)

// Asker answers one chat turn.
type Asker interface {
	Ask(ctx context.Context, sessionID, query string) (advisor.Reply, error)
}

// SessionLookup confirms a session exists before the stream opens.
type SessionLookup interface {
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
}

// Handler streams chat replies via Server-Sent Events.
type Handler struct {
	asker    Asker
	sessions SessionLookup
	logger   *slog.Logger
}

// New creates a new stream handler.
func New(asker Asker, sessions SessionLookup, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{asker: asker, sessions: sessions, logger: logger.With("component", "stream")}
}

// StreamResponse represents a streaming response chunk.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RegisterRoutes registers the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if _, err := h.sessions.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, message); err != nil {
		h.logger.Warn("stream failed", "session", sessionID, "error", err)
	}
}

// HandleStreamRequest answers userMessage for a session as a sequence of
// start, intent, message and end events. Failures after the stream opened are
// reported as an error event.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{Event: "start", SessionID: sessionID})

	reply, err := h.asker.Ask(ctx, sessionID, userMessage)
	if err != nil {
		h.sendSSE(w, flusher, StreamResponse{Event: "error", SessionID: sessionID, Error: err.Error()})
		return err
	}

	intentPayload, err := json.Marshal(map[string]any{
		"intent":   reply.Intent,
		"source":   reply.Source,
		"crop":     reply.Crop,
		"language": reply.Language,
	})
	if err == nil {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "intent",
			SessionID: sessionID,
			Content:   string(intentPayload),
		})
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   reply.Text,
	})
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	h.logger.Debug("stream completed", "session", sessionID, "intent", reply.Intent)
	return nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}
