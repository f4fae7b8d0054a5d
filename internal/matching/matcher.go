package matching

import (
	"fmt"
)

// FacetKind names a request dimension.
type FacetKind string

// Facet kinds, in rendering order.
const (
	FacetMethod FacetKind = "method"
	FacetURL    FacetKind = "url"
	FacetQuery  FacetKind = "query"
	FacetHeader FacetKind = "header"
	FacetCookie FacetKind = "cookie"
	FacetBody   FacetKind = "body"
)

// String returns the kind's name.
func (k FacetKind) String() string { return string(k) }

// Facet identifies one independently matchable dimension of a request.
type Facet struct {
	Kind FacetKind `json:"kind"`
	// Name is the header, cookie or query parameter name.
	Name string `json:"name,omitempty"`
	// Index is the position of a body clause.
	Index int `json:"index,omitempty"`
}

// String returns a stable identifier such as "method", "header:Accept" or
// "body[1]".
func (f Facet) String() string {
	switch f.Kind {
	case FacetQuery, FacetHeader, FacetCookie:
		return string(f.Kind) + ":" + f.Name
	case FacetBody:
		return fmt.Sprintf("body[%d]", f.Index)
	default:
		return string(f.Kind)
	}
}

// Verdict is the result of evaluating one facet.
type Verdict struct {
	Facet  Facet       `json:"facet"`
	Result MatchResult `json:"result"`
	// Present reports whether the facet existed in the observed request.
	Present bool `json:"present"`
}

// Verdicts holds every facet verdict for one pattern/request pair, in
// rendering order: method, URL, query parameters, headers, cookies, bodies.
type Verdicts []Verdict

// Matched reports whether every facet matched exactly.
func (v Verdicts) Matched() bool {
	for _, verdict := range v {
		if !verdict.Result.Matched {
			return false
		}
	}
	return true
}

// Distance is the mean facet distance.
func (v Verdicts) Distance() float64 {
	if len(v) == 0 {
		return 0
	}
	total := 0.0
	for _, verdict := range v {
		total += verdict.Result.Distance
	}
	return total / float64(len(v))
}

// Mismatches returns the verdicts that did not match.
func (v Verdicts) Mismatches() Verdicts {
	var out Verdicts
	for _, verdict := range v {
		if !verdict.Result.Matched {
			out = append(out, verdict)
		}
	}
	return out
}

// ByFacet indexes the results by facet identifier.
func (v Verdicts) ByFacet() map[string]MatchResult {
	out := make(map[string]MatchResult, len(v))
	for _, verdict := range v {
		out[verdict.Facet.String()] = verdict.Result
	}
	return out
}

// Match evaluates every facet of the pattern against the request without
// short-circuiting. Method and URL are always evaluated; other facets only
// when the pattern declares a clause for them.
func Match(p *RequestPattern, r *Request) Verdicts {
	if p == nil || r == nil {
		return nil
	}

	verdicts := make(Verdicts, 0, 2+len(p.queryParams)+len(p.headers)+len(p.cookies)+len(p.bodies))

	verdicts = append(verdicts, Verdict{
		Facet:   Facet{Kind: FacetMethod},
		Result:  MatchMethod(p.method, r.method),
		Present: true,
	})
	verdicts = append(verdicts, Verdict{
		Facet:   Facet{Kind: FacetURL},
		Result:  p.url.Evaluate(r.url),
		Present: true,
	})

	if len(p.queryParams) > 0 {
		query := r.Query()
		for _, c := range p.queryParams {
			verdicts = append(verdicts, Verdict{
				Facet:   Facet{Kind: FacetQuery, Name: c.Name},
				Result:  MatchQueryParam(c.Name, c.Pattern, query),
				Present: HasQueryParam(c.Name, query),
			})
		}
	}

	for _, c := range p.headers {
		verdicts = append(verdicts, Verdict{
			Facet:   Facet{Kind: FacetHeader, Name: c.Name},
			Result:  MatchHeader(c.Name, c.Pattern, r.header),
			Present: r.HasHeader(c.Name),
		})
	}

	for _, c := range p.cookies {
		_, present := r.cookies[c.Name]
		verdicts = append(verdicts, Verdict{
			Facet:   Facet{Kind: FacetCookie, Name: c.Name},
			Result:  MatchCookie(c.Name, c.Pattern, r.cookies),
			Present: present,
		})
	}

	for i, b := range p.bodies {
		verdicts = append(verdicts, Verdict{
			Facet:   Facet{Kind: FacetBody, Index: i},
			Result:  MatchBody(b, r.body),
			Present: r.HasBody(),
		})
	}

	return verdicts
}

// Matches reports whether the request satisfies every clause of the pattern.
func Matches(p *RequestPattern, r *Request) bool {
	if p == nil || r == nil {
		return false
	}
	return Match(p, r).Matched()
}

// MatchResults returns the per-facet results keyed by facet identifier.
func MatchResults(p *RequestPattern, r *Request) map[string]MatchResult {
	return Match(p, r).ByFacet()
}
