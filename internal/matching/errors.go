package matching

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidPattern is matched by every ConfigError.
var ErrInvalidPattern = errors.New("invalid pattern")

// ConfigError reports a pattern that cannot be evaluated: a malformed regex,
// JSONPath, XPath or JSON schema, or an unparseable expected body. It is raised
// when the pattern is constructed, never during matching.
type ConfigError struct {
	// Facet identifies the clause the pattern was attached to, when known.
	Facet string

	// Kind is the pattern kind being constructed.
	Kind Kind

	// Expression is the offending expression or document.
	Expression string

	// Err is the underlying parse or compile error.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid %s pattern %q: %v", e.Kind, truncate(e.Expression, 80), e.Err)
	if e.Facet != "" {
		return e.Facet + ": " + msg
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidPattern.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidPattern }

// withFacet returns a copy of err bound to a facet.
func withFacet(err error, facet string) error {
	var ce *ConfigError
	if errors.As(err, &ce) {
		bound := *ce
		bound.Facet = facet
		return &bound
	}
	return fmt.Errorf("%s: %w", facet, err)
}

// truncate shortens a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
