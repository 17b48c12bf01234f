package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"chatbot-api/internal/sieve"
)

// Message is a chat answer re-assembled from a downstream event stream.
type Message struct {
	Content    string
	CodeBlocks []sieve.Block
	// Error is the in-band error reported by the server, if any.
	Error string
}

// Collect fully consumes a downstream chat stream. Data lines that are not
// JSON are kept as raw text. The returned error is a read error only; server
// side failures are reported through Message.Error.
func Collect(r io.Reader) (Message, error) {
	var msg Message
	content := strings.Builder{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scannerBufferSize), maxScannerLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
		var frame struct {
			Content   *string      `json:"content"`
			Type      string       `json:"type"`
			CodeBlock *sieve.Block `json:"codeBlock"`
			Error     string       `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			content.WriteString(data)
			continue
		}
		switch {
		case frame.Error != "":
			msg.Error = frame.Error
		case frame.Type == "codeBlock" && frame.CodeBlock != nil:
			msg.CodeBlocks = append(msg.CodeBlocks, *frame.CodeBlock)
		case frame.Content != nil:
			content.WriteString(*frame.Content)
		}
	}
	msg.Content = content.String()
	return msg, scanner.Err()
}
