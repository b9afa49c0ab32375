package jsonx

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// maxCandidates bounds the second parse stage.
const maxCandidates = 32

// ParseObject returns the JSON object held in text. It first tries the whole
// string, then every balanced-brace substring, longest first.
func ParseObject(text string) (map[string]any, bool) {
	for _, c := range candidates(text) {
		if !isObject(c) {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(c), &obj); err == nil && obj != nil {
			return obj, true
		}
	}
	return nil, false
}

// Decode converts the object chosen by ParseObject into a fresh T. When that
// object does not fit T the call fails; smaller objects nested inside it are
// not tried in its place.
func Decode[T any](text string) (T, bool) {
	var out T
	obj, ok := ParseObject(text)
	if !ok {
		return out, false
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

func candidates(text string) []string {
	trimmed := strings.TrimSpace(stripFence(text))
	if trimmed == "" {
		return nil
	}
	out := []string{trimmed}
	return append(out, BraceCandidates(trimmed)...)
}

// BraceCandidates returns balanced {...} substrings of s sorted by length,
// longest first. Braces inside JSON strings are ignored.
func BraceCandidates(s string) []string {
	var found []string
	seen := make(map[string]struct{})

	for start := 0; start < len(s) && len(found) < maxCandidates; start++ {
		if s[start] != '{' {
			continue
		}
		end := matchBrace(s, start)
		if end < 0 {
			continue
		}
		c := s[start : end+1]
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		found = append(found, c)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return len(found[i]) > len(found[j])
	})
	return found
}

func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}

func isObject(s string) bool {
	b := bytes.TrimSpace([]byte(s))
	return len(b) > 0 && b[0] == '{'
}
