package lorem

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chatbot-api/internal/backend"
	"chatbot-api/internal/sieve"
)

func TestStreamChatProducesOneCodeBlock(t *testing.T) {
	frags, done := New().StreamChat(context.Background(), backend.Request{Prompt: "hi", Model: "lorem-instant"})
	state := sieve.NewState()
	var events []sieve.Event
	for f := range frags {
		events = append(events, sieve.Process(state, f)...)
	}
	events = append(events, sieve.Flush(state)...)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blocks := state.Blocks()
	if len(blocks) != 1 || blocks[0].Language != "python" || !strings.HasPrefix(blocks[0].Code, "def ") {
		t.Fatalf("unexpected blocks: %#v", blocks)
	}
	if strings.TrimSpace(state.Text()) == "" || strings.Contains(state.Text(), "```") {
		t.Fatalf("unexpected text: %q", state.Text())
	}
	if len(events) < 3 {
		t.Fatalf("expected interleaved events, got %d", len(events))
	}
}

func TestStreamChatCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	frags, done := New().StreamChat(ctx, backend.Request{Model: "lorem-slow"})
	<-frags
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}

func TestStreamDelay(t *testing.T) {
	cases := map[string]time.Duration{
		"lorem-instant": 0,
		"lorem-fast":    33 * time.Millisecond,
		"lorem-slow":    500 * time.Millisecond,
		"lorem-other":   100 * time.Millisecond,
	}
	for model, want := range cases {
		if got := streamDelay(model); got != want {
			t.Fatalf("%s: got %v, want %v", model, got, want)
		}
	}
}

func TestListModels(t *testing.T) {
	models, err := New().ListModels(context.Background())
	if err != nil || len(models) != 2 {
		t.Fatalf("unexpected result: %v %v", models, err)
	}
}
