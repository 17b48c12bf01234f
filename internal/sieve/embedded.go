package sieve

import (
	"encoding/json"
	"strings"

	"chatbot-api/internal/util"
)

const embeddedMarker = `{"type":"codeBlock"`

// embeddedResult describes a pre-formed code block payload found inside plain
// text. Found is set when the marker is present; OK only when the payload is
// a complete, well-formed object.
type embeddedResult struct {
	Block Block
	Start int
	End   int
	Found bool
	OK    bool
}

func findEmbeddedBlock(s string) embeddedResult {
	start := strings.Index(s, embeddedMarker)
	if start < 0 {
		return embeddedResult{}
	}
	res := embeddedResult{Start: start, Found: true}
	obj, end, ok := util.ExtractJSONObjectFrom(s, start)
	if !ok {
		return res
	}
	var payload struct {
		Type      string `json:"type"`
		CodeBlock *Block `json:"codeBlock"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return res
	}
	if payload.Type != "codeBlock" || payload.CodeBlock == nil {
		return res
	}
	res.Block = Block{
		Language: normalizeLanguage(payload.CodeBlock.Language),
		Code:     payload.CodeBlock.Code,
	}
	res.End = end
	res.OK = true
	return res
}
