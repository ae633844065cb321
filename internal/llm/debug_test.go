package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewDebugInfo(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "анализируй контракты"},
		{Role: "user", Content: "найди спецификацию"},
	}
	raw := json.RawMessage(`{"model":"qwen2.5","message":{"content":"ок"}}`)

	debug := NewDebugInfo(messages, raw)

	if len(debug.Prompt) != 2 {
		t.Fatalf("expected 2 prompt messages, got %d", len(debug.Prompt))
	}
	if !strings.Contains(debug.PromptFormatted, "[system]") ||
		!strings.Contains(debug.PromptFormatted, "[user]") {
		t.Errorf("expected role markers in formatted prompt, got %q", debug.PromptFormatted)
	}
	if string(debug.Response) != string(raw) {
		t.Errorf("expected raw response preserved, got %s", debug.Response)
	}
	if !strings.Contains(debug.ResponseFormatted, "\n") {
		t.Errorf("expected indented response, got %q", debug.ResponseFormatted)
	}
}

func TestNewDebugInfoInvalidJSONResponse(t *testing.T) {
	raw := json.RawMessage("not json")
	debug := NewDebugInfo(nil, raw)
	if debug.ResponseFormatted != "not json" {
		t.Errorf("expected raw fallback, got %q", debug.ResponseFormatted)
	}
}
