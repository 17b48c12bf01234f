// Package openai streams chat completions from an OpenAI-compatible API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"chatbot-api/internal/backend"
	"chatbot-api/internal/config"
	"chatbot-api/internal/sse"
	"chatbot-api/internal/transport"
)

const maxErrorBytes = 4096

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Client calls /chat/completions and /models on an OpenAI-compatible base URL.
type Client struct {
	baseURL string
	apiKey  string
	doer    transport.Doer
}

func New(baseURL, apiKey string, doer transport.Doer) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, doer: doer}
}

func (c *Client) Name() string {
	return config.BackendOpenAI
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// StreamChat relays choices[0].delta.content of every SSE chunk. The stream
// ends at [DONE], at a finish_reason, or at EOF.
func (c *Client) StreamChat(ctx context.Context, req backend.Request) (<-chan string, <-chan error) {
	return backend.Pump(ctx, func(ctx context.Context, emit func(string) bool) error {
		payload, err := json.Marshal(chatRequest{
			Model:    req.Model,
			Messages: []message{{Role: "user", Content: req.Prompt}},
			Stream:   true,
		})
		if err != nil {
			return err
		}
		httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Accept", "text/event-stream")
		resp, err := c.doer.Do(httpReq)
		if err != nil {
			return backend.Unavailable(c.Name(), err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
			return backend.StatusError(c.Name(), resp.StatusCode, body)
		}

		pumpCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		lines, done := sse.StartParsedLinePump(pumpCtx, resp.Body)
		for line := range lines {
			if line.ErrorMessage != "" {
				return &backend.Error{Backend: c.Name(), Kind: backend.KindUnavailable, Message: line.ErrorMessage}
			}
			if !emit(line.Content) {
				return ctx.Err()
			}
			if line.Stop {
				return nil
			}
		}
		if err := <-done; err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return backend.Unavailable(c.Name(), err)
		}
		return nil
	})
}

// ListModels returns the ids reported by GET /models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, backend.Unavailable(c.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, backend.StatusError(c.Name(), resp.StatusCode, body)
	}
	var models modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, backend.ProtocolError(c.Name(), "invalid model list: "+err.Error())
	}
	ids := make([]string, 0, len(models.Data))
	for _, m := range models.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
