package matching

import "strings"

// Method is an HTTP request method. MethodAny is only meaningful in patterns.
type Method string

// Request methods.
const (
	MethodAny     Method = "ANY"
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// ParseMethod normalizes a method name. An empty name yields MethodAny.
func ParseMethod(s string) Method {
	if s == "" {
		return MethodAny
	}
	return Method(strings.ToUpper(s))
}

// MatchMethod checks if the request method matches.
func MatchMethod(expected Method, actual string) MatchResult {
	matched := expected == MethodAny || strings.EqualFold(string(expected), actual)
	return verdict(matched, string(expected), actual)
}
