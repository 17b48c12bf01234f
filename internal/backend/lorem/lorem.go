// Package lorem is an offline backend that streams generated lorem ipsum
// with one fenced code block. It stands in for a model runner during
// development.
package lorem

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"

	"chatbot-api/internal/backend"
	"chatbot-api/internal/config"
)

// Client generates answers locally.
type Client struct {
	mu        sync.Mutex
	generator *loremgen.Lorem
}

func New() *Client {
	return &Client{generator: loremgen.New()}
}

func (c *Client) Name() string {
	return config.BackendLorem
}

// StreamChat streams a generated answer word by word. The pace depends on
// the model name.
func (c *Client) StreamChat(ctx context.Context, req backend.Request) (<-chan string, <-chan error) {
	answer := c.answer()
	delay := streamDelay(req.Model)
	return backend.Pump(ctx, func(ctx context.Context, emit func(string) bool) error {
		for i, word := range strings.SplitAfter(answer, " ") {
			if i > 0 && delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
			if !emit(word) {
				return ctx.Err()
			}
		}
		return nil
	})
}

func (c *Client) ListModels(context.Context) ([]string, error) {
	return []string{"lorem-fast", "lorem-slow"}, nil
}

func (c *Client) answer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("%s\n\n```python\ndef %s():\n    return %q\n```\n\n%s",
		c.generator.Paragraph(2, 4),
		c.generator.Word(4, 10),
		c.generator.Sentence(3, 8),
		c.generator.Sentence(5, 15),
	)
}

func streamDelay(model string) time.Duration {
	switch {
	case strings.Contains(model, "instant"):
		return 0
	case strings.Contains(model, "slow"):
		return 500 * time.Millisecond
	case strings.Contains(model, "fast"):
		return 33 * time.Millisecond
	}
	return 100 * time.Millisecond
}
