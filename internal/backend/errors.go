package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnknownModel is returned by Router.Resolve when no backend serves the
// requested model.
var ErrUnknownModel = errors.New("unknown model")

// ErrModelEnumeration wraps failures of Router.Models.
var ErrModelEnumeration = errors.New("failed to fetch models")

// ErrorKind classifies backend failures.
type ErrorKind int

const (
	// KindUnavailable covers refused connections, timeouts and non-2xx
	// responses.
	KindUnavailable ErrorKind = iota
	// KindModelNotFound means the backend does not know the model.
	KindModelNotFound
	// KindProtocol means the upstream answered with something unparseable
	// or ended the stream early.
	KindProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case KindModelNotFound:
		return "model_not_found"
	case KindProtocol:
		return "protocol"
	default:
		return "unavailable"
	}
}

// Error is a backend failure. Message is safe to show to the browser.
type Error struct {
	Backend string
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s backend: %s", e.Backend, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Unavailable reports a backend that could not be reached.
func Unavailable(backend string, cause error) *Error {
	return &Error{
		Backend: backend,
		Kind:    KindUnavailable,
		Message: "failed to reach " + backend,
		Cause:   cause,
	}
}

// ProtocolError reports an upstream stream that broke its own framing.
func ProtocolError(backend, msg string) *Error {
	return &Error{Backend: backend, Kind: KindProtocol, Message: msg}
}

// StatusError converts a non-2xx upstream response into an Error, using the
// upstream's own error message when the body carries one.
func StatusError(backend string, status int, body []byte) *Error {
	kind := KindUnavailable
	if status == http.StatusNotFound {
		kind = KindModelNotFound
	}
	msg := upstreamMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("upstream returned status %d", status)
	}
	return &Error{Backend: backend, Kind: kind, Message: msg}
}

// upstreamMessage understands both {"error":"..."} and
// {"error":{"message":"..."}} bodies.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(payload.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &obj); err == nil {
		return obj.Message
	}
	return ""
}

// UserMessage returns the text sent to the browser for a streaming failure.
func UserMessage(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	if errors.Is(err, ErrUnknownModel) {
		return err.Error()
	}
	return "failed to get response from model"
}
