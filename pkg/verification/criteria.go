package verification

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCriteria is returned when a check specifies no count criterion.
var ErrNoCriteria = errors.New("at least one verification criterion is required (atLeast, atMost, exactly, or never)")

// ErrInvalidCriteria is returned for contradictory or negative criteria.
var ErrInvalidCriteria = errors.New("invalid verification criteria")

// Criteria are the call-count expectations of a check. Never and Exactly
// take precedence over the AtLeast and AtMost bounds, which may be combined.
type Criteria struct {
	Exactly *int `json:"exactly,omitempty" yaml:"exactly,omitempty"`
	AtLeast *int `json:"atLeast,omitempty" yaml:"atLeast,omitempty"`
	AtMost  *int `json:"atMost,omitempty" yaml:"atMost,omitempty"`
	Never   bool `json:"never,omitempty" yaml:"never,omitempty"`
}

// Exactly returns criteria requiring n matches.
func Exactly(n int) Criteria { return Criteria{Exactly: &n} }

// AtLeast returns criteria requiring n or more matches.
func AtLeast(n int) Criteria { return Criteria{AtLeast: &n} }

// AtMost returns criteria allowing at most n matches.
func AtMost(n int) Criteria { return Criteria{AtMost: &n} }

// Never returns criteria requiring no match.
func Never() Criteria { return Criteria{Never: true} }

// Between returns criteria requiring lo to hi matches inclusive.
func Between(lo, hi int) Criteria { return Criteria{AtLeast: &lo, AtMost: &hi} }

// Validate reports missing or inconsistent criteria.
func (c Criteria) Validate() error {
	if !c.Never && c.Exactly == nil && c.AtLeast == nil && c.AtMost == nil {
		return ErrNoCriteria
	}
	bounds := []struct {
		name  string
		value *int
	}{{"exactly", c.Exactly}, {"atLeast", c.AtLeast}, {"atMost", c.AtMost}}
	for _, b := range bounds {
		if b.value != nil && *b.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidCriteria, b.name)
		}
	}
	if c.AtLeast != nil && c.AtMost != nil && *c.AtLeast > *c.AtMost {
		return fmt.Errorf("%w: atLeast %d exceeds atMost %d", ErrInvalidCriteria, *c.AtLeast, *c.AtMost)
	}
	return nil
}

// minimum is the lowest count that can satisfy the criteria.
func (c Criteria) minimum() int {
	switch {
	case c.Never:
		return 0
	case c.Exactly != nil:
		return *c.Exactly
	case c.AtLeast != nil:
		return *c.AtLeast
	default:
		return 0
	}
}

// evaluate checks actual against the criteria and returns whether it
// passed, the expectation text and a message.
func (c Criteria) evaluate(actual int) (passed bool, expected, message string) {
	if c.Never {
		expected = "never (0 times)"
		if actual != 0 {
			return false, expected, fmt.Sprintf("Expected request to never be received, but it was received %d time(s)", actual)
		}
		return true, expected, "Request was never received as expected"
	}

	if c.Exactly != nil {
		n := *c.Exactly
		expected = fmt.Sprintf("exactly %d time(s)", n)
		if actual != n {
			return false, expected, fmt.Sprintf("Expected request to be received exactly %d time(s), but it was received %d time(s)", n, actual)
		}
		return true, expected, fmt.Sprintf("Request was received exactly %d time(s) as expected", n)
	}

	var expectations, failures []string
	if c.AtLeast != nil {
		n := *c.AtLeast
		expectations = append(expectations, fmt.Sprintf("at least %d time(s)", n))
		if actual < n {
			failures = append(failures, fmt.Sprintf("expected at least %d request(s) but got %d", n, actual))
		}
	}
	if c.AtMost != nil {
		n := *c.AtMost
		expectations = append(expectations, fmt.Sprintf("at most %d time(s)", n))
		if actual > n {
			failures = append(failures, fmt.Sprintf("expected at most %d request(s) but got %d", n, actual))
		}
	}
	expected = strings.Join(expectations, " and ")

	if len(failures) > 0 {
		return false, expected, "Verification failed: " + strings.Join(failures, "; ")
	}
	return true, expected, fmt.Sprintf("Request was received %d time(s), matching expectations", actual)
}

// String renders the expectation, e.g. "at least 1 time(s) and at most 3 time(s)".
func (c Criteria) String() string {
	_, expected, _ := c.evaluate(0)
	return expected
}
