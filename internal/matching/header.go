package matching

import (
	"net/http"
)

// MatchHeader evaluates a header clause. Header names are case-insensitive
// (per HTTP spec). A multi-valued header matches if any value matches.
func MatchHeader(name string, p *Pattern, headers http.Header) MatchResult {
	return evaluateValues(p, headers.Values(name))
}

// MatchCookie evaluates a cookie clause against parsed cookies.
func MatchCookie(name string, p *Pattern, cookies map[string]string) MatchResult {
	if value, ok := cookies[name]; ok {
		return p.Evaluate(ValueOf(value))
	}
	return p.Evaluate(NoValue)
}

// evaluateValues evaluates p against every observed value and returns the
// first exact match, or the closest miss. No values means the facet is absent.
func evaluateValues(p *Pattern, values []string) MatchResult {
	if len(values) == 0 {
		return p.Evaluate(NoValue)
	}
	var best MatchResult
	for i, v := range values {
		res := p.Evaluate(ValueOf(v))
		if res.Matched {
			return res
		}
		if i == 0 || res.Distance < best.Distance {
			best = res
		}
	}
	return best
}
