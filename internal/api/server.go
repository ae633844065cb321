package api

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"contractparser/internal/config"
	"contractparser/internal/llm"
	"contractparser/internal/spec"
)

//go:embed static
var staticFS embed.FS

// Server is the HTTP API for the contract parser.
type Server struct {
	router chi.Router
	llm    *llm.Client
	neural *spec.NeuralExtractor
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(client *llm.Client, neural *spec.NeuralExtractor, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		llm:    client,
		neural: neural,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/chat", s.handleChat)
		r.Post("/api/chat/simple", s.handleSimpleChat)

		r.Post("/api/specification/internal", s.handleSpecificationInternal)
		r.Post("/api/specification/ai", s.handleSpecificationAI)
		r.Post("/api/specification/export", s.handleSpecificationExport)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	// Minimal built-in page for manual chat and upload testing.
	static, err := fs.Sub(staticFS, "static")
	if err == nil {
		r.Handle("/*", http.FileServer(http.FS(static)))
	}

	s.router = r
}
