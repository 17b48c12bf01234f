package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbot-api/internal/backend"
	"chatbot-api/internal/backend/anthropic"
	"chatbot-api/internal/backend/lorem"
	"chatbot-api/internal/backend/ollama"
	"chatbot-api/internal/backend/openai"
	"chatbot-api/internal/config"
	"chatbot-api/internal/server"
	"chatbot-api/internal/transport"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	config.InitLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	routes, err := buildRouter(cfg)
	if err != nil {
		config.Logger.Error("invalid routing configuration", "error", err)
		os.Exit(1)
	}
	app := server.NewApp(cfg, routes)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine so we can listen for shutdown signals.
	go func() {
		config.Logger.Info("starting chatbot-api", "port", cfg.Port, "frontend", cfg.FrontendURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			config.Logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal (Ctrl+C / SIGTERM).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	config.Logger.Info("shutdown signal received", "signal", sig.String())

	// Graceful shutdown: allow up to 10 seconds for in-flight requests to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		config.Logger.Error("graceful shutdown failed, forcing exit", "error", err)
		os.Exit(1)
	}
	config.Logger.Info("server gracefully stopped")
}

func buildRouter(cfg config.Config) (*backend.Router, error) {
	table, err := config.LoadRoutingTable(cfg)
	if err != nil {
		return nil, err
	}
	local := transport.New(transport.Options{ResponseHeaderTimeout: cfg.UpstreamTimeout})
	backends := []backend.Backend{
		ollama.New(cfg.OllamaBaseURL, local),
		lorem.New(),
	}
	if cfg.OpenAIAPIKey != "" {
		hosted := transport.New(transport.Options{
			ResponseHeaderTimeout: cfg.UpstreamTimeout,
			Fingerprint:           cfg.OpenAITLSFingerprint,
		})
		backends = append(backends, openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, hosted))
	}
	if cfg.AnthropicAPIKey != "" {
		backends = append(backends, anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicMaxTokens))
	}
	for _, b := range backends {
		config.Logger.Debug("backend enabled", "backend", b.Name())
	}
	return backend.NewRouter(table, cfg.DefaultModel, cfg.ModelsBackend, backends...)
}
