package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chatbot-api/internal/sieve"
)

type contentFrame struct {
	Content string `json:"content"`
}

type codeBlockFrame struct {
	Type      string      `json:"type"`
	CodeBlock sieve.Block `json:"codeBlock"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// Writer serializes classifier events as downstream "data:" frames. Frames
// are flushed one by one; after the first failed write every later call is a
// no-op returning the same error.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
	err     error
}

// NewWriter wraps w. When w is an http.Flusher each frame is flushed as soon
// as it is written.
func NewWriter(w io.Writer) *Writer {
	flusher, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: flusher}
}

// Err returns the first write error, if any.
func (sw *Writer) Err() error {
	return sw.err
}

// WriteEvents writes each event in order and stops at the first failure.
func (sw *Writer) WriteEvents(events []sieve.Event) error {
	for _, ev := range events {
		if err := sw.WriteEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent writes one classifier event.
func (sw *Writer) WriteEvent(ev sieve.Event) error {
	if ev.IsCodeBlock() {
		return sw.writeFrame(codeBlockFrame{Type: "codeBlock", CodeBlock: *ev.CodeBlock})
	}
	return sw.writeFrame(contentFrame{Content: ev.Content})
}

// WriteError writes the in-band error frame that ends a failed stream.
func (sw *Writer) WriteError(msg string) error {
	return sw.writeFrame(errorFrame{Error: msg})
}

func (sw *Writer) writeFrame(frame any) error {
	if sw.err != nil {
		return sw.err
	}
	b, err := json.Marshal(frame)
	if err != nil {
		sw.err = err
		return err
	}
	if _, err := fmt.Fprintf(sw.w, "data: %s\n\n", b); err != nil {
		sw.err = err
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}
