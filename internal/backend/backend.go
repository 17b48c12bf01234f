// Package backend defines the model backend capability shared by the local
// runner and the hosted APIs, plus the router that picks one per request.
package backend

import "context"

const fragmentBufferSize = 64

// Request is one chat turn sent to a backend.
type Request struct {
	Prompt string
	Model  string
}

// Backend streams chat completions and enumerates models.
//
// StreamChat returns a fragments channel that is closed at the end of the
// stream. The error channel then yields exactly one value: nil on clean
// completion, otherwise the failure, whether it happened before the first
// fragment or mid-stream. Cancelling ctx aborts the upstream request.
type Backend interface {
	Name() string
	StreamChat(ctx context.Context, req Request) (<-chan string, <-chan error)
	ListModels(ctx context.Context) ([]string, error)
}

// Pump runs one upstream stream in its own goroutine and adapts it to the
// channel pair returned by Backend.StreamChat. run pushes fragments through
// emit, which reports false once ctx is done.
func Pump(ctx context.Context, run func(ctx context.Context, emit func(string) bool) error) (<-chan string, <-chan error) {
	out := make(chan string, fragmentBufferSize)
	done := make(chan error, 1)
	go func() {
		emit := func(fragment string) bool {
			if fragment == "" {
				return ctx.Err() == nil
			}
			select {
			case out <- fragment:
				return true
			case <-ctx.Done():
				return false
			}
		}
		err := run(ctx, emit)
		if err == nil {
			err = ctx.Err()
		}
		close(out)
		done <- err
	}()
	return out, done
}
