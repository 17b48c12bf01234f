package sse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseSSELine extracts the JSON payload of one upstream "data:" line.
// done is set for the "[DONE]" terminator; ok is false for comments, blank
// lines, other fields and undecodable payloads.
func ParseSSELine(raw []byte) (map[string]any, bool, bool) {
	line := strings.TrimSpace(string(raw))
	if line == "" || !strings.HasPrefix(line, "data:") {
		return nil, false, false
	}
	dataStr := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if dataStr == "[DONE]" {
		return nil, true, true
	}
	chunk := map[string]any{}
	if err := json.Unmarshal([]byte(dataStr), &chunk); err != nil {
		return nil, false, false
	}
	return chunk, false, true
}

// ParseChatCompletionChunk pulls the text delta out of an OpenAI-style
// streaming chunk. finished is set when the first choice reports a
// finish_reason.
func ParseChatCompletionChunk(chunk map[string]any) (content string, finished bool) {
	choices, _ := chunk["choices"].([]any)
	if len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	if delta, ok := choice["delta"].(map[string]any); ok {
		content, _ = delta["content"].(string)
	}
	if content == "" {
		if msg, ok := choice["message"].(map[string]any); ok {
			content, _ = msg["content"].(string)
		}
	}
	if reason, ok := choice["finish_reason"].(string); ok && reason != "" {
		finished = true
	}
	return content, finished
}

func errorMessage(v any) string {
	switch e := v.(type) {
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%v", v)
}
