package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contractparser/internal/api"
	"contractparser/internal/config"
	"contractparser/internal/llm"
	"contractparser/internal/spec"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := llm.NewClient(cfg.OllamaBaseURL, cfg.OllamaTimeout)
	neural := spec.NewNeuralExtractor(client, cfg.SpecModel, cfg.MaxPromptLines)

	// Pull the extraction model in the background so the first request
	// doesn't pay for it. A failure is logged, not fatal.
	if cfg.EnsureModel {
		go func() {
			ensureCtx, ensureCancel := context.WithTimeout(ctx, 10*time.Minute)
			defer ensureCancel()
			if err := client.EnsureModel(ensureCtx, cfg.SpecModel); err != nil {
				log.Warn("unable to ensure model", "model", cfg.SpecModel, "error", err)
			}
		}()
	}

	srv := api.NewServer(client, neural, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting contractparser", "port", cfg.Port, "ollama", cfg.OllamaBaseURL, "chat_model", cfg.ChatModel, "spec_model", cfg.SpecModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
