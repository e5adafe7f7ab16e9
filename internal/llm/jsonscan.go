package llm

import (
	"errors"
	"fmt"
	"strings"
)

// MaxJSONDepth bounds brace nesting accepted by ExtractJSONObject.
const MaxJSONDepth = 32

var (
	errNoObject   = errors.New("no '{' in response")
	errTooDeep    = fmt.Errorf("json nesting exceeds %d", MaxJSONDepth)
	errUnbalanced = errors.New("unbalanced braces")
)

// ExtractJSONObject returns the first balanced {...} span in text, so prose
// or code fences around the object are ignored. Braces inside string
// literals (either quote style, with backslash escapes) do not count.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("%w: %w", ErrUnparseable, errNoObject)
	}

	depth := 0
	var quote byte
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
			if depth > MaxJSONDepth {
				return "", fmt.Errorf("%w: %w", ErrUnparseable, errTooDeep)
			}
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: %w", ErrUnparseable, errUnbalanced)
}
