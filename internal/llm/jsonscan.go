package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when a response contains no balanced JSON value.
var ErrNoJSON = errors.New("no JSON structure found in response")

// ExtractJSON recovers the first balanced JSON array or object from free text.
// Markdown fences are stripped first. The scanner tracks nesting over both
// bracket kinds together with string and escape state, so brackets inside string
// values and commentary after the value are ignored. Candidates that balance but
// do not parse as JSON are skipped.
func ExtractJSON(text string) (string, error) {
	return extract(text, "{[")
}

// ExtractJSONArray is ExtractJSON restricted to arrays.
func ExtractJSONArray(text string) (string, error) {
	return extract(text, "[")
}

// ExtractJSONObject is ExtractJSON restricted to objects.
func ExtractJSONObject(text string) (string, error) {
	return extract(text, "{")
}

func extract(text, openers string) (string, error) {
	text = CleanJSONBlock(text)

	for start := 0; start < len(text); start++ {
		if strings.IndexByte(openers, text[start]) < 0 {
			continue
		}
		end, ok := scanBalanced(text, start)
		if !ok {
			continue
		}
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	return "", ErrNoJSON
}

// scanBalanced returns the index of the delimiter closing the structure opened at
// text[start]. ok is false when the structure is truncated or mismatched.
func scanBalanced(text string, start int) (end int, ok bool) {
	stack := make([]byte, 0, 8)
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

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
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
