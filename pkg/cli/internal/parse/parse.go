// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"fmt"
	"net/http"
	"strings"
)

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to ':'.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Headers parses repeated "Name: value" flags into an http.Header. A name
// may repeat to give several values.
func Headers(values []string) (http.Header, error) {
	h := make(http.Header)
	for _, v := range values {
		name, value, ok := KeyValue(v, ':')
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", v)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

// Cookies parses repeated "name=value" flags. Later values win.
func Cookies(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := KeyValue(v, '=')
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid cookie %q: expected name=value", v)
		}
		out[name] = value
	}
	return out, nil
}

// SplitTrim splits s by sep and trims whitespace from each part, dropping
// empty parts.
func SplitTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
