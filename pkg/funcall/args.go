package funcall

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports an argument buffer from which no JSON object could be
// extracted.
type ParseError struct {
	Buffer string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not extract a JSON object from streamed arguments: %q", e.Buffer)
}

// ParseArguments turns a streamed tool-call argument buffer into an
// argument map. The buffer is a concatenation of raw provider fragments and
// is not guaranteed to be a single well-formed JSON document: fragments can
// be duplicated or followed by stray data. An empty buffer is a valid call
// with no arguments.
//
// The fast path parses the whole buffer as one JSON value. Failing that,
// the buffer is scanned left to right, skipping whitespace and comma
// separators and decoding one JSON value at a time; the last complete
// object wins, as it is the most settled version of the arguments. A buffer
// that never yields an object fails with *ParseError.
func ParseArguments(buffer string) (map[string]any, error) {
	s := strings.TrimSpace(buffer)
	if s == "" {
		return map[string]any{}, nil
	}

	var whole any
	if err := json.Unmarshal([]byte(s), &whole); err == nil {
		if obj, ok := whole.(map[string]any); ok {
			return obj, nil
		}
		// Parsed but not an object: fall through to the scan, which will
		// fail the same way unless a later fragment carries an object.
	}

	var last map[string]any
	idx := 0
	for idx < len(s) {
		for idx < len(s) && isSeparator(s[idx]) {
			idx++
		}
		if idx >= len(s) {
			break
		}
		dec := json.NewDecoder(strings.NewReader(s[idx:]))
		var value any
		if err := dec.Decode(&value); err != nil {
			break
		}
		if obj, ok := value.(map[string]any); ok {
			last = obj
		}
		idx += int(dec.InputOffset())
	}
	if last != nil {
		return last, nil
	}
	return nil, &ParseError{Buffer: s}
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', ',':
		return true
	default:
		return false
	}
}
