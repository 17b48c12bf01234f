// Package sieve classifies a streamed model answer into plain-text deltas and
// completed fenced code blocks.
//
// Plain text is released as soon as it arrives; code is buffered until its
// closing fence (or the end of the stream) because a partial block cannot be
// highlighted. Fences may be split across fragments at any byte.
package sieve

import "strings"

// Process feeds one fragment into the classifier and returns the events it
// produced, in order.
func Process(state *State, fragment string) []Event {
	if state == nil || fragment == "" {
		return nil
	}
	pending := state.residual + fragment
	state.residual = ""

	events := make([]Event, 0, 2)
	for {
		idx := strings.Index(pending, fence)
		if idx < 0 {
			body, hold := splitTrailingBackticks(pending)
			events = state.consume(events, body)
			state.residual = hold
			return events
		}
		events = state.consume(events, pending[:idx])
		if state.inCode {
			events = state.closeBlock(events)
		} else {
			state.openBlock()
		}
		pending = pending[idx+len(fence):]
	}
}

// Flush ends the turn. Held-back backticks go to whichever accumulator is
// active and an unterminated block is emitted as complete.
func Flush(state *State) []Event {
	if state == nil {
		return nil
	}
	events := make([]Event, 0, 2)
	if state.residual != "" {
		hold := state.residual
		state.residual = ""
		events = state.consume(events, hold)
	}
	if state.inCode {
		events = state.closeBlock(events)
	}
	return events
}

// consume routes a delimiter-free segment to the active accumulator.
func (s *State) consume(events []Event, segment string) []Event {
	if segment == "" {
		return events
	}
	if !s.inCode {
		return s.consumePlain(events, segment)
	}
	if s.tagPending {
		nl := strings.IndexByte(segment, '\n')
		if nl < 0 {
			s.tag.WriteString(segment)
			return events
		}
		s.tag.WriteString(segment[:nl])
		s.language = normalizeLanguage(s.tag.String())
		s.tag.Reset()
		s.tagPending = false
		segment = segment[nl+1:]
	}
	s.code.WriteString(segment)
	return events
}

func (s *State) consumePlain(events []Event, segment string) []Event {
	for segment != "" {
		found := findEmbeddedBlock(segment)
		if !found.Found || !found.OK {
			// A malformed marker leaves the rest of the segment as plain text.
			break
		}
		events = s.emitText(events, segment[:found.Start])
		events = s.emitBlock(events, found.Block)
		segment = segment[found.End:]
	}
	return s.emitText(events, segment)
}

// splitTrailingBackticks separates a trailing run of backticks that could
// still grow into a fence. The caller guarantees s holds no full fence, so
// the held part is at most two bytes.
func splitTrailingBackticks(s string) (body, hold string) {
	n := 0
	for n < len(fence)-1 && n < len(s) && s[len(s)-1-n] == '`' {
		n++
	}
	return s[:len(s)-n], s[len(s)-n:]
}
