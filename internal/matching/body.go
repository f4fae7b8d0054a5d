package matching

// MatchBody evaluates a body clause against the whole observed body. An empty
// body counts as absent.
func MatchBody(p *Pattern, body []byte) MatchResult {
	return p.Evaluate(bodyValue(body))
}

// MatchBodies evaluates every body clause independently. The body matches
// only if every clause does.
func MatchBodies(patterns []*Pattern, body []byte) ([]MatchResult, bool) {
	results := make([]MatchResult, len(patterns))
	all := true
	for i, p := range patterns {
		results[i] = MatchBody(p, body)
		if !results[i].Matched {
			all = false
		}
	}
	return results, all
}

func bodyValue(body []byte) Value {
	if len(body) == 0 {
		return NoValue
	}
	return ValueOf(string(body))
}
