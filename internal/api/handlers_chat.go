package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"contractparser/internal/llm"
)

type chatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

type simpleChatRequest struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"system_prompt"`
}

type chatResponse struct {
	Reply string         `json:"reply"`
	Model string         `json:"model"`
	Debug *llm.DebugInfo `json:"debug,omitempty"`
}

var validRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}

// handleChat relays a user message plus a capped window of conversation
// history to the chat model.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}
	for _, m := range req.History {
		if !validRoles[m.Role] {
			jsonError(w, "invalid history role: "+m.Role, http.StatusBadRequest)
			return
		}
	}

	history := req.History
	if len(history) > s.cfg.HistoryWindow {
		history = history[len(history)-s.cfg.HistoryWindow:]
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	s.relayChat(w, r, messages)
}

// handleSimpleChat relays a single message with an optional system prompt.
func (s *Server) handleSimpleChat(w http.ResponseWriter, r *http.Request) {
	var req simpleChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}

	var messages []llm.Message
	if sp := strings.TrimSpace(req.SystemPrompt); sp != "" {
		messages = append(messages, llm.Message{Role: "system", Content: sp})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	s.relayChat(w, r, messages)
}

func (s *Server) relayChat(w http.ResponseWriter, r *http.Request, messages []llm.Message) {
	result, err := s.llm.Chat(r.Context(), s.cfg.ChatModel, messages, nil)
	if err != nil {
		s.log.Error("chat relay failed", "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply: result.Reply,
		Model: result.Model,
		Debug: llm.NewDebugInfo(messages, result.Response),
	})
}
