package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Ollama connection
	OllamaBaseURL string
	OllamaTimeout time.Duration

	// Models
	ChatModel string
	SpecModel string

	// If set, model availability is ensured (pulled) at startup.
	EnsureModel bool

	// Chat
	HistoryWindow int

	// Upload limits
	MaxUploadBytes int64

	// Neural extraction
	MaxPromptLines int

	// Optional bearer-token auth for the API.
	APIKey string

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	// Local deployments keep their settings in a .env file.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8000"),

		OllamaBaseURL: envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaTimeout: envDuration("OLLAMA_TIMEOUT", 120*time.Second),

		ChatModel: envOr("CHAT_MODEL", "qwen2.5"),
		SpecModel: envOr("SPEC_MODEL", "qwen2.5"),

		EnsureModel: envBool("ENSURE_MODEL", true),

		HistoryWindow: envInt("HISTORY_WINDOW", 20),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		MaxPromptLines: envInt("MAX_PROMPT_LINES", 600),

		APIKey: os.Getenv("API_KEY"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.MaxPromptLines < 0 {
		cfg.MaxPromptLines = 0
	}
	if cfg.OllamaTimeout <= 0 {
		cfg.OllamaTimeout = 120 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ChatModel == "" {
		return fmt.Errorf("CHAT_MODEL is required")
	}
	if c.SpecModel == "" {
		return fmt.Errorf("SPEC_MODEL is required")
	}
	if _, err := url.ParseRequestURI(c.OllamaBaseURL); err != nil {
		return fmt.Errorf("OLLAMA_BASE_URL is invalid: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
