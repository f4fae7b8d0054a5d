package matching

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// evaluateJSONPath selects nodes from the observed JSON document. The actual
// rendering is always the raw observed body.
func (p *Pattern) evaluateJSONPath(body string) MatchResult {
	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		// Not valid JSON - no match, not an error
		return noMatch(p.expected, body)
	}
	return verdict(p.matchesAny(selectJSONPath(p.jsonPath, data)), p.expected, body)
}

// selectJSONPath returns the string form of every non-null node expr selects.
func selectJSONPath(expr jp.Expr, data any) []string {
	results := expr.Get(data)
	nodes := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		nodes = append(nodes, jsonNodeString(r))
	}
	return nodes
}

// jsonNodeString renders a selected node for nested matching: strings by
// content, everything else as compact JSON.
func jsonNodeString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// ValidateJSONPathExpression validates a JSONPath expression at load time.
// Returns an error if the expression is invalid.
func ValidateJSONPathExpression(path string) error {
	_, err := jp.ParseString(path)
	if err != nil {
		return fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
	}
	return nil
}
