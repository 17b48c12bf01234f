package sieve

import "strings"

const (
	fence           = "```"
	defaultLanguage = "auto"
)

// Block is one fenced code block as it is sent to the browser.
type Block struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Event is a single classifier output. Exactly one of Content or CodeBlock is
// set: Content for a plain-text delta, CodeBlock for a completed block.
type Event struct {
	Content   string
	CodeBlock *Block
}

// IsCodeBlock reports whether the event carries a completed code block.
func (e Event) IsCodeBlock() bool {
	return e.CodeBlock != nil
}

// State is the classifier state for one chat turn. It must not be shared
// between turns or goroutines.
type State struct {
	inCode     bool
	tagPending bool
	tag        strings.Builder
	language   string
	code       strings.Builder

	// residual holds up to two trailing backticks that may be the first half
	// of a fence split across fragments.
	residual string

	text   strings.Builder
	blocks []Block
}

// NewState returns a classifier in plain-text mode with empty accumulators.
func NewState() *State {
	return &State{}
}

// InCodeBlock reports whether a fence is currently open.
func (s *State) InCodeBlock() bool {
	return s.inCode
}

// Text returns all plain text emitted so far in this turn.
func (s *State) Text() string {
	return s.text.String()
}

// Blocks returns the code blocks completed so far in this turn.
func (s *State) Blocks() []Block {
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

func (s *State) emitText(events []Event, text string) []Event {
	if text == "" {
		return events
	}
	s.text.WriteString(text)
	return append(events, Event{Content: text})
}

func (s *State) emitBlock(events []Event, block Block) []Event {
	s.blocks = append(s.blocks, block)
	return append(events, Event{CodeBlock: &block})
}

func (s *State) openBlock() {
	s.inCode = true
	s.tagPending = true
	s.tag.Reset()
	s.language = ""
	s.code.Reset()
}

func (s *State) closeBlock(events []Event) []Event {
	if s.tagPending {
		s.language = normalizeLanguage(s.tag.String())
	}
	block := Block{Language: s.language, Code: s.code.String()}
	s.inCode = false
	s.tagPending = false
	s.tag.Reset()
	s.language = ""
	s.code.Reset()
	return s.emitBlock(events, block)
}

func normalizeLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return defaultLanguage
	}
	return tag
}
