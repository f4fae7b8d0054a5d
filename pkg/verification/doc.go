// Package verification checks how often a request pattern was satisfied by a
// journal of observed requests.
//
// A check pairs a pattern with count criteria (exactly, at least, at most,
// never). When too few requests match, the result carries the closest
// observed requests together with the rendered diff for each, so a failing
// assertion shows what was received instead of only a count.
package verification
