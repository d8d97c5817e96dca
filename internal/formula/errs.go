package formula

import (
	"fmt"
	"unicode/utf8"
)

// nearWindow is how many bytes of context to show on each side of an error
// position.
const nearWindow = 40

// ParseError reports a tokenization, grammar or literal failure. It always
// carries the offending byte position and a snippet of the surrounding text;
// tokenizer-level failures also carry the active operator summary.
type ParseError struct {
	Msg  string
	Pos  int
	Near string
	Ops  string // operator summary, "" when not relevant
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("%s at pos=%d near=%q", e.Msg, e.Pos, e.Near)
	if e.Ops != "" {
		s += " operators=" + e.Ops
	}
	return s
}

// near extracts a context window around pos, flattening control characters so
// the snippet stays on one log line. Pure; window is the byte count kept on
// each side.
func near(text string, pos, window int) string {
	start := pos - window
	if start < 0 {
		start = 0
	}
	end := pos + window
	if end > len(text) {
		end = len(text)
	}
	if start > len(text) {
		start = len(text)
	}
	// Windows are byte counts; widen them to rune boundaries so the snippet
	// never splits a multibyte character.
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	snippet := []byte(text[start:end])
	for i, c := range snippet {
		if c == '\n' || c == '\r' || c == '\t' {
			snippet[i] = ' '
		}
	}
	return string(snippet)
}
