// Package anthropic streams chat completions from the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"chatbot-api/internal/backend"
	"chatbot-api/internal/config"
)

// Client wraps the Anthropic SDK client.
type Client struct {
	client    anthropic.Client
	maxTokens int64
}

// New creates a client. Extra options are passed to the SDK, which is how
// tests point it at a local server.
func New(apiKey string, maxTokens int64, opts ...option.RequestOption) *Client {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{client: anthropic.NewClient(opts...), maxTokens: maxTokens}
}

func (c *Client) Name() string {
	return config.BackendAnthropic
}

// StreamChat relays the text deltas of a streaming Messages call.
func (c *Client) StreamChat(ctx context.Context, req backend.Request) (<-chan string, <-chan error) {
	return backend.Pump(ctx, func(ctx context.Context, emit func(string) bool) error {
		stream := c.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(req.Model),
			MaxTokens: c.maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
			},
		})
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok || delta.Delta.Type != "text_delta" {
				continue
			}
			if !emit(delta.Delta.Text) {
				return ctx.Err()
			}
		}
		if err := stream.Err(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return c.wrapError(err)
		}
		return nil
	})
}

// ListModels pages through the models available to the API key.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	iter := c.client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})
	var ids []string
	for iter.Next() {
		ids = append(ids, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, c.wrapError(err)
	}
	return ids, nil
}

func (c *Client) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		be := backend.StatusError(c.Name(), apiErr.StatusCode, []byte(apiErr.RawJSON()))
		be.Cause = err
		return be
	}
	return backend.Unavailable(c.Name(), err)
}
