package sse

// LineResult is the normalized parse result for one upstream SSE line.
type LineResult struct {
	Parsed       bool
	Stop         bool
	ErrorMessage string
	Content      string
}

// ParseChatCompletionLine centralizes one-line parsing of an OpenAI-style
// chat completion stream.
func ParseChatCompletionLine(raw []byte) LineResult {
	chunk, done, parsed := ParseSSELine(raw)
	if !parsed {
		return LineResult{}
	}
	if done {
		return LineResult{Parsed: true, Stop: true}
	}
	if errObj, hasErr := chunk["error"]; hasErr && errObj != nil {
		return LineResult{
			Parsed:       true,
			Stop:         true,
			ErrorMessage: errorMessage(errObj),
		}
	}
	content, finished := ParseChatCompletionChunk(chunk)
	return LineResult{
		Parsed:  true,
		Stop:    finished,
		Content: content,
	}
}
