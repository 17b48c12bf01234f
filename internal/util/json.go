package util

// ExtractJSONObjectFrom returns the JSON object that starts at s[start] and
// the index just past its closing brace. Braces inside string literals are
// ignored. ok is false when s[start] is not '{' or the object never closes.
func ExtractJSONObjectFrom(s string, start int) (obj string, end int, ok bool) {
	if start < 0 || start >= len(s) || s[start] != '{' {
		return "", 0, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], i + 1, true
			}
		}
	}
	return "", 0, false
}
