package api

import (
	"net/http"
	"strings"
)

type healthResponse struct {
	Status         string `json:"status"`
	Model          string `json:"model"`
	Ollama         string `json:"ollama"`
	ModelAvailable bool   `json:"model_available"`
}

// handleHealth reports service readiness and whether the chat model is
// present in the Ollama instance. A degraded Ollama is reported, not fatal.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Model:  s.cfg.ChatModel,
		Ollama: s.llm.BaseURL(),
	}

	names, err := s.llm.ListModels(r.Context())
	if err != nil {
		resp.Status = "degraded"
	} else {
		for _, name := range names {
			if name == s.cfg.ChatModel || strings.SplitN(name, ":", 2)[0] == s.cfg.ChatModel {
				resp.ModelAvailable = true
				break
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.llm == nil || s.llm.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"chat_model": s.cfg.ChatModel,
		"spec_model": s.cfg.SpecModel,
		"stats":      s.llm.Stats.Snapshot(),
	})
}
