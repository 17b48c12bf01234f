// Package ollama streams chat completions from a local Ollama runner.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"chatbot-api/internal/backend"
	"chatbot-api/internal/config"
	"chatbot-api/internal/transport"
)

const (
	maxLineSize   = 1024 * 1024
	maxErrorBytes = 4096
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatChunk struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Client talks to the Ollama HTTP API.
type Client struct {
	baseURL string
	doer    transport.Doer
}

func New(baseURL string, doer transport.Doer) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), doer: doer}
}

func (c *Client) Name() string {
	return config.BackendOllama
}

// StreamChat posts the prompt to /api/chat and relays message.content of each
// NDJSON line until a line reports done.
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
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		resp, err := c.doer.Do(httpReq)
		if err != nil {
			return backend.Unavailable(c.Name(), err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
			return backend.StatusError(c.Name(), resp.StatusCode, body)
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk chatChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				config.Logger.Debug("[ollama] skipping malformed line", "error", err)
				continue
			}
			if chunk.Error != "" {
				return &backend.Error{Backend: c.Name(), Kind: backend.KindUnavailable, Message: chunk.Error}
			}
			if !emit(chunk.Message.Content) {
				return ctx.Err()
			}
			if chunk.Done {
				return nil
			}
		}
		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return backend.Unavailable(c.Name(), err)
		}
		return backend.ProtocolError(c.Name(), "stream ended before completion")
	})
}

// ListModels returns the names of the locally installed models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
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
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, backend.ProtocolError(c.Name(), "invalid model list: "+err.Error())
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
