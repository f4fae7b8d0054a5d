package matching

import (
	"strings"
)

// URLKind identifies how a URLPattern compares the observed URL.
type URLKind int

// URL pattern kinds.
const (
	URLKindAny URLKind = iota
	URLKindEqual
	URLKindRegex
	URLKindPathEqual
	URLKindPathRegex
	URLKindPathTemplate
)

// AnyURLRendering is the expected-side rendering of AnyURL.
const AnyURLRendering = "(any URL)"

// URLPattern matches the request URL, either whole (path and query) or path
// only.
type URLPattern struct {
	kind       URLKind
	expression string
	pattern    *Pattern
	err        error
}

// AnyURL matches every URL.
func AnyURL() *URLPattern {
	return &URLPattern{kind: URLKindAny}
}

// URLEqualTo matches the full URL, including the query string, exactly.
func URLEqualTo(u string) *URLPattern {
	return &URLPattern{kind: URLKindEqual, expression: u, pattern: EqualTo(u)}
}

// URLMatching matches the full URL against a regular expression.
func URLMatching(expr string) *URLPattern {
	p := Matching(expr)
	return &URLPattern{kind: URLKindRegex, expression: expr, pattern: p, err: p.Err()}
}

// URLPathEqualTo matches the path exactly, ignoring the query string.
func URLPathEqualTo(path string) *URLPattern {
	return &URLPattern{kind: URLKindPathEqual, expression: path, pattern: EqualTo(path)}
}

// URLPathMatching matches the path against a regular expression.
func URLPathMatching(expr string) *URLPattern {
	p := Matching(expr)
	return &URLPattern{kind: URLKindPathRegex, expression: expr, pattern: p, err: p.Err()}
}

// URLPathTemplate matches the path against a template with {name}
// parameters and * wildcards.
func URLPathTemplate(template string) *URLPattern {
	u := &URLPattern{kind: URLKindPathTemplate, expression: template}
	if err := ValidatePathTemplate(template); err != nil {
		u.err = &ConfigError{Kind: KindMatches, Expression: template, Err: err}
	}
	return u
}

// Kind returns the URL pattern's kind.
func (u *URLPattern) Kind() URLKind { return u.kind }

// Expression returns the URL, path, regex or template as given.
func (u *URLPattern) Expression() string { return u.expression }

// Err returns the configuration error captured at construction, if any.
func (u *URLPattern) Err() error { return u.err }

// PathOnly reports whether the query string is ignored.
func (u *URLPattern) PathOnly() bool {
	return u.kind == URLKindPathEqual || u.kind == URLKindPathRegex || u.kind == URLKindPathTemplate
}

// Expected returns the expected-side rendering.
func (u *URLPattern) Expected() string {
	if u.kind == URLKindAny {
		return AnyURLRendering
	}
	return u.expression
}

// Evaluate matches the pattern against a raw request URL. The actual
// rendering is the part of the URL that was compared.
func (u *URLPattern) Evaluate(rawURL string) MatchResult {
	actual := rawURL
	if u.PathOnly() {
		actual = urlPath(rawURL)
	}
	if u.err != nil {
		return noMatch(u.Expected(), actual)
	}

	switch u.kind {
	case URLKindAny:
		return exactMatch(u.Expected(), actual)
	case URLKindPathTemplate:
		return verdict(MatchPath(u.expression, actual), u.Expected(), actual)
	default:
		res := u.pattern.Evaluate(ValueOf(actual))
		res.Expected = u.Expected()
		return res
	}
}

// urlPath strips the query string and fragment from a request URI.
func urlPath(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
