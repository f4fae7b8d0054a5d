package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Candidate is a named pattern considered for near-miss ranking.
type Candidate struct {
	ID      string
	Name    string
	Pattern *RequestPattern
}

// NearMiss is a pattern that partially matched an incoming request.
type NearMiss struct {
	ID              string   `json:"id"`
	Name            string   `json:"name,omitempty"`
	Distance        float64  `json:"distance"`
	MatchPercentage int      `json:"matchPercentage"`
	Verdicts        Verdicts `json:"verdicts"`
	Reason          string   `json:"reason"`

	urlDistance int
}

// RequestNearMiss is an observed request ranked against one pattern.
type RequestNearMiss struct {
	// Index is the request's position in the slice passed to ClosestRequests.
	Index    int      `json:"index"`
	Distance float64  `json:"distance"`
	Verdicts Verdicts `json:"verdicts"`
	Reason   string   `json:"reason"`

	urlDistance int
}

// CollectNearMisses evaluates all candidates against the request and returns
// the topN closest non-matching ones. Candidates with no matching facet at all
// are skipped. Ties on distance are broken by the edit distance between the
// candidate's URL expression and the request URL.
func CollectNearMisses(candidates []Candidate, r *Request, topN int) []NearMiss {
	if topN <= 0 {
		topN = 3
	}

	var misses []NearMiss
	for _, c := range candidates {
		if c.Pattern == nil {
			continue
		}
		v := Match(c.Pattern, r)
		if v.Matched() || len(v.Mismatches()) == len(v) {
			continue
		}
		misses = append(misses, NearMiss{
			ID:              c.ID,
			Name:            c.Name,
			Distance:        v.Distance(),
			MatchPercentage: matchPercentage(v),
			Verdicts:        v,
			Reason:          GenerateReason(v),
			urlDistance:     levenshtein.ComputeDistance(c.Pattern.url.Expected(), r.url),
		})
	}

	sort.SliceStable(misses, func(i, j int) bool {
		if misses[i].Distance != misses[j].Distance {
			return misses[i].Distance < misses[j].Distance
		}
		return misses[i].urlDistance < misses[j].urlDistance
	})

	if len(misses) > topN {
		misses = misses[:topN]
	}
	return misses
}

// ClosestRequests ranks observed requests by how closely they satisfy the
// pattern and returns the topN that do not match it.
func ClosestRequests(p *RequestPattern, requests []*Request, topN int) []RequestNearMiss {
	if topN <= 0 {
		topN = 3
	}

	var misses []RequestNearMiss
	for i, r := range requests {
		if r == nil {
			continue
		}
		v := Match(p, r)
		if v.Matched() {
			continue
		}
		misses = append(misses, RequestNearMiss{
			Index:       i,
			Distance:    v.Distance(),
			Verdicts:    v,
			Reason:      GenerateReason(v),
			urlDistance: levenshtein.ComputeDistance(p.url.Expected(), r.url),
		})
	}

	sort.SliceStable(misses, func(i, j int) bool {
		if misses[i].Distance != misses[j].Distance {
			return misses[i].Distance < misses[j].Distance
		}
		return misses[i].urlDistance < misses[j].urlDistance
	})

	if len(misses) > topN {
		misses = misses[:topN]
	}
	return misses
}

func matchPercentage(v Verdicts) int {
	if len(v) == 0 {
		return 0
	}
	matched := len(v) - len(v.Mismatches())
	return (matched * 100) / len(v)
}

// GenerateReason creates a human-readable explanation of why a pattern
// partially matched but ultimately failed.
func GenerateReason(v Verdicts) string {
	if len(v) == 0 {
		return "no fields to compare"
	}

	var matched []string
	var firstMismatch *Verdict

	for i := range v {
		if v[i].Result.Matched {
			matched = append(matched, v[i].Facet.String())
		} else if firstMismatch == nil {
			firstMismatch = &v[i]
		}
	}

	if firstMismatch == nil {
		return "all specified fields matched"
	}

	if len(matched) == 0 {
		return formatMismatch(firstMismatch)
	}

	return joinFields(matched) + " matched, but " + formatMismatch(firstMismatch)
}

// formatMismatch formats a single facet mismatch into a human-readable string.
func formatMismatch(v *Verdict) string {
	expected := truncate(v.Result.Expected, 80)
	actual := truncate(v.Result.Actual, 80)
	switch v.Facet.Kind {
	case FacetMethod:
		return fmt.Sprintf("method expected %q, got %q", expected, actual)
	case FacetURL:
		return fmt.Sprintf("url expected %q, got %q", expected, actual)
	case FacetQuery, FacetHeader, FacetCookie:
		name := string(v.Facet.Kind)
		if v.Facet.Kind == FacetQuery {
			name = "query param"
		}
		if !v.Present {
			return fmt.Sprintf("%s %s expected %q, but it is missing", name, v.Facet.Name, expected)
		}
		return fmt.Sprintf("%s %s expected %q, got %q", name, v.Facet.Name, expected, actual)
	case FacetBody:
		if !v.Present {
			return fmt.Sprintf("body clause %d expected %q, but the body is empty", v.Facet.Index, expected)
		}
		return fmt.Sprintf("body clause %d expected %q", v.Facet.Index, expected)
	default:
		return v.Facet.String() + " did not match"
	}
}

// joinFields joins field names with commas and "and".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}
