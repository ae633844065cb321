package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DebugInfo is the diagnostic payload attached to chat and extraction
// responses: the exact messages sent, a readable rendering of them, the raw
// Ollama response, and its indented form.
type DebugInfo struct {
	Prompt            []Message       `json:"prompt"`
	PromptFormatted   string          `json:"prompt_formatted"`
	Response          json.RawMessage `json:"response"`
	ResponseFormatted string          `json:"response_formatted"`
}

// NewDebugInfo builds the debug payload for one LLM exchange.
func NewDebugInfo(messages []Message, rawResponse json.RawMessage) *DebugInfo {
	return &DebugInfo{
		Prompt:            messages,
		PromptFormatted:   formatMessages(messages),
		Response:          rawResponse,
		ResponseFormatted: indentJSON(rawResponse),
	}
}

func formatMessages(messages []Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s]\n%s", m.Role, m.Content)
	}
	return sb.String()
}

func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
