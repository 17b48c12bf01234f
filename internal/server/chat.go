package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"chatbot-api/internal/backend"
	"chatbot-api/internal/config"
	"chatbot-api/internal/sieve"
	"chatbot-api/internal/sse"
	"chatbot-api/internal/util"
)

const maxChatBodyBytes = 1 << 20

type chatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

func (a *App) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		util.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}
	b, model, err := a.backends.Resolve(req.Model)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, backend.UserMessage(err))
		return
	}

	// Returning from the handler cancels the backend stream.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := config.Logger.With(
		"turn_id", uuid.NewString(),
		"request_id", middleware.GetReqID(r.Context()),
		"backend", b.Name(),
		"model", model,
	)
	start := time.Now()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	out := sse.NewWriter(w)
	state := sieve.NewState()
	frags, done := b.StreamChat(ctx, backend.Request{Prompt: req.Message, Model: model})
stream:
	for {
		select {
		case <-r.Context().Done():
			log.Info("[chat] client disconnected", "duration", time.Since(start))
			return
		case frag, ok := <-frags:
			if !ok {
				break stream
			}
			if err := out.WriteEvents(sieve.Process(state, frag)); err != nil {
				log.Info("[chat] client went away", "error", err)
				return
			}
		}
	}
	streamErr := <-done
	if err := out.WriteEvents(sieve.Flush(state)); err != nil {
		log.Info("[chat] client went away", "error", err)
		return
	}
	if streamErr != nil {
		if errors.Is(streamErr, context.Canceled) && r.Context().Err() != nil {
			log.Info("[chat] client disconnected", "duration", time.Since(start))
			return
		}
		log.Warn("[chat] backend stream failed", "error", streamErr)
		_ = out.WriteError(backend.UserMessage(streamErr))
		return
	}
	log.Info("[chat] turn complete",
		"text_bytes", len(state.Text()),
		"code_blocks", len(state.Blocks()),
		"duration", time.Since(start),
	)
}
