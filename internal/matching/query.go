package matching

import (
	"net/url"
)

// MatchQueryParam evaluates a query parameter clause. A repeated parameter
// matches if any occurrence matches.
func MatchQueryParam(name string, p *Pattern, params url.Values) MatchResult {
	return evaluateValues(p, params[name])
}

// HasQueryParam checks if a query parameter exists (regardless of value).
func HasQueryParam(name string, params url.Values) bool {
	_, exists := params[name]
	return exists
}
