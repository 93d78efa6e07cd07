package provider

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"roadmapper/internal/types"
)

// Some providers occasionally emit tool calls as inline text instead of
// the native structured field, using the grammar:
//
//	<function=NAME {JSON}
//
// DecodeInlineCall recovers such calls. It returns (call, true, nil) on
// success, (nil, false, nil) when the text does not match the grammar at
// all, and an error when the grammar matches but the JSON payload is
// malformed.
func DecodeInlineCall(text string) (*types.ToolCall, bool, error) {
	m := inlineCallStart.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, false, nil
	}

	name := text[m[2]:m[3]]
	payload, ok := balancedJSON(text[m[4]:])
	if !ok {
		return nil, false, fmt.Errorf("unterminated arguments for inline call to %s", name)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		return nil, false, fmt.Errorf("malformed arguments for inline call to %s: %w", name, err)
	}

	return &types.ToolCall{Name: name, Input: args}, true, nil
}

// inlineCallStart matches the call prefix and the opening brace of the
// argument object.
var inlineCallStart = regexp.MustCompile(`<function=(\w+)\s*(\{)`)

// balancedJSON returns the prefix of s that forms a brace-balanced JSON
// object, honoring string literals and escapes. s must start at the
// opening brace.
func balancedJSON(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
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
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// LooksLikeInlineCall reports whether the text begins with the inline
// call grammar, ignoring leading whitespace.
func LooksLikeInlineCall(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<function=")
}
