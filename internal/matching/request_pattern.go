package matching

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var errNilPattern = fmt.Errorf("%w: nil pattern", ErrInvalidPattern)

// Clause binds a Pattern to a named facet (header, cookie or query parameter).
type Clause struct {
	Name    string
	Pattern *Pattern
}

// RequestPattern is a built, immutable request expectation. Facets without
// clauses are unconstrained.
type RequestPattern struct {
	method      Method
	url         *URLPattern
	queryParams []Clause
	headers     []Clause
	cookies     []Clause
	bodies      []*Pattern
}

// Method returns the expected method (MethodAny when unconstrained).
func (p *RequestPattern) Method() Method { return p.method }

// URL returns the URL pattern.
func (p *RequestPattern) URL() *URLPattern { return p.url }

// QueryParams returns the query parameter clauses in declaration order.
func (p *RequestPattern) QueryParams() []Clause { return slices.Clone(p.queryParams) }

// Headers returns the header clauses in declaration order.
func (p *RequestPattern) Headers() []Clause { return slices.Clone(p.headers) }

// Cookies returns the cookie clauses in declaration order.
func (p *RequestPattern) Cookies() []Clause { return slices.Clone(p.cookies) }

// Bodies returns the body clauses in declaration order.
func (p *RequestPattern) Bodies() []*Pattern { return slices.Clone(p.bodies) }

// RequestPatternBuilder accumulates clauses for a RequestPattern. Each With
// method returns the same builder; Build freezes a copy.
type RequestPatternBuilder struct {
	pattern RequestPattern
}

// NewRequestPattern starts a pattern for the given method and URL. An empty
// method means MethodAny and a nil URL means AnyURL.
func NewRequestPattern(method Method, url *URLPattern) *RequestPatternBuilder {
	if method == "" {
		method = MethodAny
	}
	if url == nil {
		url = AnyURL()
	}
	return &RequestPatternBuilder{pattern: RequestPattern{method: method, url: url}}
}

// WithHeader constrains a header. Names are case-insensitive; a second clause
// for the same header replaces the first in place.
func (b *RequestPatternBuilder) WithHeader(name string, p *Pattern) *RequestPatternBuilder {
	b.pattern.headers = putClause(b.pattern.headers, Clause{Name: name, Pattern: p}, strings.EqualFold)
	return b
}

// WithCookie constrains a cookie.
func (b *RequestPatternBuilder) WithCookie(name string, p *Pattern) *RequestPatternBuilder {
	b.pattern.cookies = putClause(b.pattern.cookies, Clause{Name: name, Pattern: p}, sameName)
	return b
}

// WithQueryParam constrains a query parameter.
func (b *RequestPatternBuilder) WithQueryParam(name string, p *Pattern) *RequestPatternBuilder {
	b.pattern.queryParams = putClause(b.pattern.queryParams, Clause{Name: name, Pattern: p}, sameName)
	return b
}

// WithRequestBody appends a body clause. Body clauses are ANDed.
func (b *RequestPatternBuilder) WithRequestBody(p *Pattern) *RequestPatternBuilder {
	b.pattern.bodies = append(b.pattern.bodies, p)
	return b
}

// Build validates every clause and returns an immutable RequestPattern.
// Configuration errors from all clauses are joined; each matches
// ErrInvalidPattern.
func (b *RequestPatternBuilder) Build() (*RequestPattern, error) {
	var errs []error
	if err := b.pattern.url.Err(); err != nil {
		errs = append(errs, withFacet(err, FacetURL.String()))
	}
	errs = append(errs, clauseErrors(FacetQuery, b.pattern.queryParams)...)
	errs = append(errs, clauseErrors(FacetHeader, b.pattern.headers)...)
	errs = append(errs, clauseErrors(FacetCookie, b.pattern.cookies)...)
	for i, p := range b.pattern.bodies {
		facet := Facet{Kind: FacetBody, Index: i}.String()
		if err := patternError(p); err != nil {
			errs = append(errs, withFacet(err, facet))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	built := RequestPattern{
		method:      b.pattern.method,
		url:         b.pattern.url,
		queryParams: slices.Clone(b.pattern.queryParams),
		headers:     slices.Clone(b.pattern.headers),
		cookies:     slices.Clone(b.pattern.cookies),
		bodies:      slices.Clone(b.pattern.bodies),
	}
	return &built, nil
}

// MustBuild is like Build but panics on a configuration error.
func (b *RequestPatternBuilder) MustBuild() *RequestPattern {
	p, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("matching: %v", err))
	}
	return p
}

func clauseErrors(kind FacetKind, clauses []Clause) []error {
	var errs []error
	for _, c := range clauses {
		if err := patternError(c.Pattern); err != nil {
			errs = append(errs, withFacet(err, Facet{Kind: kind, Name: c.Name}.String()))
		}
	}
	return errs
}

func patternError(p *Pattern) error {
	if p == nil {
		return errNilPattern
	}
	return p.Err()
}

func putClause(clauses []Clause, c Clause, same func(a, b string) bool) []Clause {
	for i := range clauses {
		if same(clauses[i].Name, c.Name) {
			clauses[i] = c
			return clauses
		}
	}
	return append(clauses, c)
}

func sameName(a, b string) bool { return a == b }
