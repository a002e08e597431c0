package chat

import (
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/analysis/intent"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the chat log.
type Message struct {
	ID        string        `json:"id"`
	SessionID string        `json:"sessionId"`
	Role      Role          `json:"role"`
	Content   string        `json:"content"`
	Intent    intent.Intent `json:"intent,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}
