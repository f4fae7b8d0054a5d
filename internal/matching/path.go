package matching

import (
	"errors"
	"strings"
)

var (
	errUnbalancedBraces = errors.New("unbalanced braces in path template")
	errEmptyParamName   = errors.New("empty parameter name in path template")
)

// MatchPath checks if the request path matches a path template.
// Supports:
//   - Exact match: "/api/users" matches "/api/users"
//   - Wildcard: "/api/users/*" matches "/api/users/123"
//   - Named params: "/api/users/{id}" matches "/api/users/123"
func MatchPath(pattern, path string) bool {
	// Exact match
	if pattern == path {
		return true
	}

	// Check for named parameter pattern (e.g., /api/users/{id})
	if strings.Contains(pattern, "{") && strings.Contains(pattern, "}") {
		if matchNamedParams(pattern, path) {
			return true
		}
	}

	// Trailing wildcard (e.g., /api/users/*)
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// General wildcard matching
	if strings.Contains(pattern, "*") {
		return matchWildcard(pattern, path)
	}

	return false
}

// matchNamedParams checks if path matches a pattern with named parameters.
// Example: "/users/{id}" matches "/users/123"
func matchNamedParams(pattern, path string) bool {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	// Must have same number of segments
	if len(patternParts) != len(pathParts) {
		return false
	}

	for i, patternPart := range patternParts {
		// Named parameter matches any non-empty value
		if strings.HasPrefix(patternPart, "{") && strings.HasSuffix(patternPart, "}") {
			if pathParts[i] == "" {
				return false
			}
			continue
		}
		// Literal parts must match exactly
		if patternPart != pathParts[i] {
			return false
		}
	}

	return true
}

// matchWildcard performs simple wildcard pattern matching.
// * matches any sequence of characters.
func matchWildcard(pattern, path string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == path
	}

	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}

		// For first part, must be prefix
		if i == 0 {
			if !strings.HasPrefix(path, part) {
				return false
			}
			pos = len(part)
			continue
		}

		// For last part, must be suffix
		if i == len(parts)-1 {
			return strings.HasSuffix(path[pos:], part)
		}

		// For middle parts, find the substring
		idx := strings.Index(path[pos:], part)
		if idx == -1 {
			return false
		}
		pos += idx + len(part)
	}

	return true
}

// PathParameters extracts named parameters from a path template.
// Example: template "/users/{id}" with path "/users/123" returns {"id": "123"}.
// Returns nil if the path does not match the template.
func PathParameters(template, path string) map[string]string {
	if !matchNamedParams(template, path) {
		return nil
	}
	result := make(map[string]string)
	patternParts := strings.Split(strings.Trim(template, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	for i, patternPart := range patternParts {
		if strings.HasPrefix(patternPart, "{") && strings.HasSuffix(patternPart, "}") {
			result[patternPart[1:len(patternPart)-1]] = pathParts[i]
		}
	}
	return result
}

// ValidatePathTemplate checks that every "{" is closed and names a parameter.
func ValidatePathTemplate(template string) error {
	depth := 0
	start := 0
	for i, c := range template {
		switch c {
		case '{':
			if depth > 0 {
				return errUnbalancedBraces
			}
			depth++
			start = i
		case '}':
			if depth == 0 {
				return errUnbalancedBraces
			}
			if i == start+1 {
				return errEmptyParamName
			}
			depth--
		}
	}
	if depth != 0 {
		return errUnbalancedBraces
	}
	return nil
}
