package sse

import (
	"bufio"
	"context"
	"io"
)

const (
	parsedLineBufferSize = 128
	scannerBufferSize    = 64 * 1024
	maxScannerLineSize   = 2 * 1024 * 1024
)

// StartParsedLinePump scans an upstream SSE body and emits normalized line
// parse results. The error channel receives exactly one value once the
// results channel is closed: the scanner error, ctx.Err() if the consumer
// went away, or nil at EOF.
func StartParsedLinePump(ctx context.Context, body io.Reader) (<-chan LineResult, <-chan error) {
	out := make(chan LineResult, parsedLineBufferSize)
	done := make(chan error, 1)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, scannerBufferSize), maxScannerLineSize)
		for scanner.Scan() {
			result := ParseChatCompletionLine(scanner.Bytes())
			if !result.Parsed {
				continue
			}
			select {
			case out <- result:
			case <-ctx.Done():
				done <- ctx.Err()
				return
			}
		}
		done <- scanner.Err()
	}()
	return out, done
}
