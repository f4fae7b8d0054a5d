package matching

// MatchResult is the outcome of evaluating one Pattern against one observed
// value.
type MatchResult struct {
	// Matched is true only for an exact match.
	Matched bool `json:"matched"`

	// Distance is 0 for a perfect match and grows towards 1 as the observed
	// value diverges. Used for closest-match ranking.
	Distance float64 `json:"distance"`

	// Expected is the canonical rendering of what the pattern expects.
	Expected string `json:"expected"`

	// Actual is the rendering of the observed value used for diffs. For
	// structured bodies it is canonical (and possibly reduced); otherwise it
	// is the raw observed text.
	Actual string `json:"actual"`
}

func exactMatch(expected, actual string) MatchResult {
	return MatchResult{Matched: true, Distance: 0, Expected: expected, Actual: actual}
}

func noMatch(expected, actual string) MatchResult {
	return MatchResult{Matched: false, Distance: 1, Expected: expected, Actual: actual}
}

func verdict(matched bool, expected, actual string) MatchResult {
	if matched {
		return exactMatch(expected, actual)
	}
	return noMatch(expected, actual)
}
