package ai

import (
	"regexp"
	"strings"
)

// fenceLine matches a Markdown code fence on a line of its own. A JSON
// string cannot hold a raw newline, so removing such lines never alters
// valid JSON.
var fenceLine = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_-]*[ \t]*\r?$")

// StripFences removes Markdown code fences, including a fence glued to the
// start or end of a single-line answer.
func StripFences(raw string) string {
	s := fenceLine.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimLeft(s[3:], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CleanJSON strips fences and surrounding prose from a model answer. It
// slices from the first '[' or '{' to the last closer of the same kind.
// Clean JSON comes back unchanged.
func CleanJSON(raw string) string {
	s := StripFences(raw)

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}

// ExtractBalanced returns the first balanced object or array in s that
// starts with open ('{' or '['). Brackets inside string literals are
// ignored. A zero open accepts either kind.
func ExtractBalanced(s string, open byte) (string, bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '{' && c != '[' {
			continue
		}
		if open != 0 && c != open {
			continue
		}
		if end, ok := matchBrackets(s, i); ok {
			return s[i : end+1], true
		}
	}
	return "", false
}

// matchBrackets scans from the opener at start and returns the index of
// its matching closer.
func matchBrackets(s string, start int) (int, bool) {
	stack := make([]byte, 0, 16)
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
