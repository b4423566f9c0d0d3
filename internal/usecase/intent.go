package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"expense-assistant/internal/domain"
)

const DefaultModel = "gpt-4o-mini"

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

// intentExtractor asks the model for a JSON object describing the caller's
// intent. It never fails on a badly shaped answer; only transport and status
// errors from the client are returned.
type intentExtractor struct {
	llm   LLMClient
	model string
	log   *slog.Logger
}

func (x intentExtractor) extract(ctx context.Context, system, user string) (map[string]any, error) {
	raw, err := x.llm.Chat(ctx, x.model, []domain.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err != nil {
		return nil, err
	}
	intent, ok := parseIntent(raw)
	if !ok {
		x.log.WarnContext(ctx, "intent not parseable, using defaults", "content_len", len(raw))
	}
	return intent, nil
}

// parseIntent decodes a model answer into a JSON object. The second result is
// false when the content was empty or not an object; the map is then empty
// but never nil.
func parseIntent(raw string) (map[string]any, bool) {
	clean := stripCodeFence(raw)
	if clean == "" {
		return map[string]any{}, false
	}
	dec := json.NewDecoder(bytes.NewBufferString(clean))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil || out == nil {
		return map[string]any{}, false
	}
	return out, true
}

// stripCodeFence removes a ```json ... ``` wrapper some models add even in
// JSON mode.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	idx := strings.Index(s, "\n")
	if idx == -1 {
		return ""
	}
	s = s[idx+1:]
	if end := strings.LastIndex(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
