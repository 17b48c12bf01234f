// Package server exposes the chat proxy over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chatbot-api/internal/backend"
	"chatbot-api/internal/config"
	"chatbot-api/internal/util"
)

type App struct {
	Router   http.Handler
	backends *backend.Router
}

func NewApp(cfg config.Config, backends *backend.Router) *App {
	app := &App{backends: backends}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors(cfg.FrontendURL))

	r.Get("/healthz", health)
	r.Head("/healthz", health)
	r.Get("/readyz", health)
	r.Head("/readyz", health)

	r.Post("/chat", app.chat)
	r.Get("/models", app.models)
	r.Get("/download/{filename}", download)

	app.Router = r
	return app
}

func health(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *App) models(w http.ResponseWriter, r *http.Request) {
	names, err := a.backends.Models(r.Context())
	if err != nil {
		config.Logger.Error("[models] listing failed", "error", err)
		util.WriteError(w, http.StatusInternalServerError, "failed to list models")
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]any{"models": names})
}

func download(w http.ResponseWriter, r *http.Request) {
	config.Logger.Info("[download] not implemented", "filename", chi.URLParam(r, "filename"))
	util.WriteError(w, http.StatusNotImplemented, "download is not implemented yet")
}
