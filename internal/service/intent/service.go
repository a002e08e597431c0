package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/analysis/intent"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/model/chat"
)

// Source records which classifier produced a result.
type Source string

const (
	SourceKeyword Source = "keyword"
	SourceLLM     Source = "llm"
)

// minConfidence is the model confidence below which its answer is discarded.
const minConfidence = 0.5

// Config controls the model fallback.
type Config struct {
	Enabled      bool
	HistoryLimit int
}

// Result is a classification with its origin.
type Result struct {
	Intent     analysis.Intent `json:"intent"`
	Source     Source          `json:"source"`
	Confidence float32         `json:"confidence"`
}

// Service classifies queries with the keyword buckets and, for queries that
// match none, optionally asks a chat model.
type Service struct {
	enabled      bool
	classifier   compose.Runnable[map[string]any, *schema.Message]
	historyLimit int
	logger       *slog.Logger
}

// NewService builds the classifier. A nil chatModel or disabled config yields
// a keyword-only service.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 4
	}

	svc := &Service{
		enabled:      cfg.Enabled && chatModel != nil,
		historyLimit: historyLimit,
		logger:       logger,
	}
	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(intentSystemPrompt),
		schema.UserMessage(intentUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile intent classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled reports whether the model fallback is active.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Classify returns the keyword intent when one matches. Otherwise the model is
// consulted; any failure or low-confidence answer keeps the query unknown.
func (s *Service) Classify(ctx context.Context, query string, history []chat.Message) Result {
	keyword := Result{Intent: analysis.Classify(query), Source: SourceKeyword, Confidence: 1}
	if keyword.Intent != analysis.Unknown || !s.Enabled() || strings.TrimSpace(query) == "" {
		return keyword
	}

	input := map[string]any{
		"intents": describeIntents(),
		"history": formatHistory(history, s.historyLimit),
		"query":   strings.TrimSpace(query),
	}

	msg, err := s.classifier.Invoke(ctx, input)
	if err != nil {
		s.logger.Warn("intent classifier invoke failed", "error", err)
		return keyword
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return keyword
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		s.logger.Warn("intent classifier output parse failed", "error", err)
		return keyword
	}

	label, ok := analysis.Parse(payload.Intent)
	if !ok || label == analysis.Unknown {
		return keyword
	}
	confidence := payload.Confidence
	if confidence > 1 {
		confidence = 1
	}
	if confidence < minConfidence {
		s.logger.Debug("intent classifier below threshold", "intent", label, "confidence", confidence)
		return keyword
	}

	return Result{Intent: label, Source: SourceLLM, Confidence: confidence}
}

type classifierPayload struct {
	Intent     string  `json:"intent"`
	Confidence float32 `json:"confidence"`
}

// parseClassifierOutput extracts the first JSON object from the model reply.
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func describeIntents() string {
	var b strings.Builder
	for _, in := range analysis.All() {
		if in == analysis.Unknown {
			continue
		}
		b.WriteString("- ")
		b.WriteString(string(in))
		b.WriteString(": ")
		b.WriteString(strings.Join(analysis.Keywords(in), ", "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHistory(messages []chat.Message, limit int) string {
	if len(messages) == 0 {
		return "none"
	}
	start := len(messages) - limit
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		lines = append(lines, string(msg.Role)+": "+content)
	}
	if len(lines) == 0 {
		return "none"
	}
	return strings.Join(lines, "\n")
}

const intentSystemPrompt = "You route questions from Punjab farmers to an advisory bot. Questions may be in English, Punjabi, Hindi or romanized Punjabi/Hindi. " +
	"Pick exactly one topic from this list, or unknown when none fits:\n{intents}\n" +
	"Reply with a single JSON object with the fields intent (one of the topic names or unknown) and confidence (a number between 0 and 1). Output nothing else."

const intentUserPrompt = "Recent conversation:\n{history}\n\nFarmer question:\n{query}"
