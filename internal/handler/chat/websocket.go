package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
)

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage carries a farmer question.
type TextMessage struct {
	Text string `json:"text"`
}

// ConfigMessage switches session preferences mid-conversation.
type ConfigMessage struct {
	Language string `json:"language"`
	District string `json:"district"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type connectionState struct {
	sessionID string
	language  advisory.LanguageCode
	district  string
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	state := &connectionState{sessionID: session.ID, language: session.Language, district: session.District}
	h.logger.Info("websocket connected", "session", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go h.pingLoop(ctx, conn)

	h.sendInfo(conn, sessionID, map[string]any{
		"type":     "connected",
		"district": state.district,
		"language": state.language,
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "session", sessionID, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(conn, "session mismatch")
			continue
		}
		h.handleMessage(ctx, conn, state, &msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		h.handleTextMessage(ctx, conn, state, msg.Data)
	case "config":
		h.handleConfigMessage(ctx, conn, state, msg.Data)
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) handleTextMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(conn, "invalid text payload")
		return
	}

	reply, err := h.advisor.Ask(ctx, state.sessionID, text.Text)
	if err != nil {
		h.logger.Warn("websocket ask failed", "session", state.sessionID, "error", err)
		h.sendError(conn, err.Error())
		return
	}

	h.sendInfo(conn, state.sessionID, map[string]any{
		"type":     "reply",
		"intent":   reply.Intent,
		"source":   reply.Source,
		"text":     reply.Text,
		"crop":     reply.Crop,
		"language": reply.Language,
	})
}

func (h *Handler) handleConfigMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var cfg ConfigMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		h.sendError(conn, "invalid config payload")
		return
	}

	if err := h.applyConfig(ctx, state, cfg); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.logger.Info("websocket config applied", "session", state.sessionID, "district", state.district, "language", state.language)
	h.sendInfo(conn, state.sessionID, map[string]any{
		"type":     "config",
		"district": state.district,
		"language": state.language,
	})
}

// applyConfig persists the requested changes and mirrors them into state.
// Nothing is applied when either field is invalid.
func (h *Handler) applyConfig(ctx context.Context, state *connectionState, cfg ConfigMessage) error {
	district := state.district
	if cfg.District != "" {
		resolved, err := h.advisor.ResolveDistrict(ctx, cfg.District)
		if err != nil {
			return err
		}
		district = resolved
	}

	lang := state.language
	if cfg.Language != "" {
		lang = advisory.ParseLanguage(cfg.Language)
		if err := h.advisor.Engine().Table().Require(lang); err != nil {
			return err
		}
	}

	if lang != state.language {
		if _, err := h.chatSvc.SetLanguage(ctx, state.sessionID, lang); err != nil {
			return err
		}
		state.language = lang
	}
	if district != state.district {
		if _, err := h.chatSvc.SetDistrict(ctx, state.sessionID, district); err != nil {
			return err
		}
		state.district = district
	}
	return nil
}

func (h *Handler) sendInfo(conn *websocket.Conn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", "error", err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", "error", err)
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
