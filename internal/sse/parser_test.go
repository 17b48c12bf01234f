package sse

import "testing"

func TestParseSSELine(t *testing.T) {
	chunk, done, ok := ParseSSELine([]byte(`data: {"v":"你好"}`))
	if !ok || done {
		t.Fatalf("expected parsed chunk")
	}
	if chunk["v"] != "你好" {
		t.Fatalf("unexpected chunk: %#v", chunk)
	}
}

func TestParseSSELineDone(t *testing.T) {
	_, done, ok := ParseSSELine([]byte(`data: [DONE]`))
	if !ok || !done {
		t.Fatalf("expected done signal")
	}
}

func TestParseSSELineIgnoresOtherFields(t *testing.T) {
	for _, raw := range []string{"", ": keep-alive", "event: ping", "data: not json"} {
		if _, _, ok := ParseSSELine([]byte(raw)); ok {
			t.Fatalf("expected %q to be ignored", raw)
		}
	}
}

func TestParseChatCompletionChunkDelta(t *testing.T) {
	chunk := map[string]any{
		"choices": []any{
			map[string]any{"delta": map[string]any{"content": "hi"}},
		},
	}
	content, finished := ParseChatCompletionChunk(chunk)
	if content != "hi" || finished {
		t.Fatalf("unexpected result: %q finished=%v", content, finished)
	}
}

func TestParseChatCompletionChunkFinishReason(t *testing.T) {
	chunk := map[string]any{
		"choices": []any{
			map[string]any{"delta": map[string]any{}, "finish_reason": "stop"},
		},
	}
	content, finished := ParseChatCompletionChunk(chunk)
	if content != "" || !finished {
		t.Fatalf("unexpected result: %q finished=%v", content, finished)
	}
}

func TestParseChatCompletionChunkMessageFallback(t *testing.T) {
	chunk := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": "whole"}},
		},
	}
	if content, _ := ParseChatCompletionChunk(chunk); content != "whole" {
		t.Fatalf("unexpected content: %q", content)
	}
}
