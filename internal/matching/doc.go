// Package matching decides whether an observed HTTP request satisfies a
// declared request pattern.
//
// A RequestPattern aggregates attribute patterns keyed by request facet:
//
//   - Method: an exact method or the ANY wildcard
//   - URL: full-URL equality or regex, path equality, regex or template
//   - Query parameters, headers and cookies: one Pattern per declared name
//   - Body: an ordered list of Patterns, each evaluated against the whole body
//
// A Pattern is a closed union over match kinds (equalTo, matches, doesNotMatch,
// equalToJson, equalToXml, matchesJsonPath, matchesXPath, matchesJsonSchema,
// contains, absent). Evaluating a Pattern yields a MatchResult carrying the
// verdict, a distance in [0,1] and the expected/actual renderings used by the
// diff renderer.
//
// Match evaluates every declared facet without short-circuiting and returns
// the full set of Verdicts. CollectNearMisses and ClosestRequests rank
// partial matches by distance.
//
// Patterns, RequestPatterns and Requests are immutable once built; every
// function in this package is safe for concurrent use.
package matching
