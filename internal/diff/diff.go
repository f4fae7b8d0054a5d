// Package diff renders the difference between a request pattern and an
// observed request as two aligned text blocks.
//
// Every facet the pattern constrains contributes one section to each block,
// in the order the matcher evaluates them: method, URL, query parameters,
// headers, cookies, then body clauses. Non-body sections are single lines
// terminated by a line separator. A named facet missing from the request
// renders as an empty line on the actual side so both blocks keep the same
// line count. Body sections are separated from each other by a line
// separator and keep whatever terminator their rendering carries.
//
// The String form wraps both blocks in the assertion-failure layout that IDE
// test runners recognise:
//
//	 expected:<
//	GET
//	/thing
//	> but was:<
//	POST
//	/thing
//	>
package diff

import (
	"slices"
	"strings"

	"github.com/getmockd/reqdiff/internal/matching"
	"github.com/getmockd/reqdiff/internal/structured"
)

// Section is the rendering of one facet on both sides.
type Section struct {
	Facet    matching.Facet `json:"facet"`
	Expected string         `json:"expected"`
	Actual   string         `json:"actual"`
	Matched  bool           `json:"matched"`
}

// Diff is an immutable rendering of a pattern/request comparison.
type Diff struct {
	sections []Section
}

// New evaluates p against r and renders the result.
func New(p *matching.RequestPattern, r *matching.Request) *Diff {
	return FromVerdicts(matching.Match(p, r))
}

// FromVerdicts renders precomputed verdicts.
func FromVerdicts(v matching.Verdicts) *Diff {
	d := &Diff{sections: make([]Section, 0, len(v))}
	for _, verdict := range v {
		d.sections = append(d.sections, render(verdict))
	}
	return d
}

func render(v matching.Verdict) Section {
	s := Section{Facet: v.Facet, Matched: v.Result.Matched}
	nl := structured.LineSeparator

	switch v.Facet.Kind {
	case matching.FacetMethod, matching.FacetURL:
		s.Expected = v.Result.Expected + nl
		s.Actual = v.Result.Actual + nl
	case matching.FacetQuery:
		s.Expected = "Query: " + v.Facet.Name + "=" + v.Result.Expected + nl
		s.Actual = namedLine(v, "Query: "+v.Facet.Name+"=")
	case matching.FacetHeader:
		s.Expected = v.Facet.Name + ": " + v.Result.Expected + nl
		s.Actual = namedLine(v, v.Facet.Name+": ")
	case matching.FacetCookie:
		s.Expected = "Cookie: " + v.Facet.Name + "=" + v.Result.Expected + nl
		s.Actual = namedLine(v, "Cookie: "+v.Facet.Name+"=")
	case matching.FacetBody:
		s.Expected = v.Result.Expected
		s.Actual = v.Result.Actual
	}
	return s
}

// namedLine renders the actual side of a named facet. A facet missing from
// the request leaves only the line separator.
func namedLine(v matching.Verdict, prefix string) string {
	if !v.Present {
		return structured.LineSeparator
	}
	return prefix + v.Result.Actual + structured.LineSeparator
}

// Sections returns the per-facet renderings in block order.
func (d *Diff) Sections() []Section { return slices.Clone(d.sections) }

// Matched reports whether every section matched.
func (d *Diff) Matched() bool {
	for _, s := range d.sections {
		if !s.Matched {
			return false
		}
	}
	return true
}

// Mismatches returns only the sections that did not match.
func (d *Diff) Mismatches() []Section {
	var out []Section
	for _, s := range d.sections {
		if !s.Matched {
			out = append(out, s)
		}
	}
	return out
}

// ExpectedBlock returns the expected side.
func (d *Diff) ExpectedBlock() string {
	return d.block(func(s Section) string { return s.Expected })
}

// ActualBlock returns the actual side.
func (d *Diff) ActualBlock() string {
	return d.block(func(s Section) string { return s.Actual })
}

func (d *Diff) block(side func(Section) string) string {
	var sb strings.Builder
	bodies := 0
	for _, s := range d.sections {
		if s.Facet.Kind == matching.FacetBody {
			if bodies > 0 {
				sb.WriteString(structured.LineSeparator)
			}
			bodies++
		}
		sb.WriteString(side(s))
	}
	return sb.String()
}

// String returns the assertion-style message for both blocks.
func (d *Diff) String() string {
	return JUnitStyleMessage(d.ExpectedBlock(), d.ActualBlock())
}

// JUnitStyleMessage formats an expected/actual pair the way JUnit's
// ComparisonFailure does, which lets IDEs offer a side-by-side view.
func JUnitStyleMessage(expected, actual string) string {
	nl := structured.LineSeparator
	return " expected:<" + nl + expected + "> but was:<" + nl + actual + ">"
}
