package verification

import (
	"log/slog"

	"github.com/getmockd/reqdiff/internal/diff"
	"github.com/getmockd/reqdiff/internal/matching"
	"github.com/getmockd/reqdiff/pkg/logging"
	"github.com/getmockd/reqdiff/pkg/requestlog"
)

// DefaultNearMisses is how many near misses a failing check reports.
const DefaultNearMisses = 3

// Result is the outcome of one check.
type Result struct {
	Passed   bool   `json:"passed"`
	Actual   int    `json:"actual"`
	Expected string `json:"expected"`
	Message  string `json:"message"`

	// Matched holds the positions of the matching requests in the order
	// they were supplied.
	Matched []int `json:"matched,omitempty"`

	// NearMisses is set when too few requests matched.
	NearMisses []NearMiss `json:"nearMisses,omitempty"`
}

// NearMiss is an observed request that came close to the pattern.
type NearMiss struct {
	Index    int     `json:"index"`
	EntryID  string  `json:"entryId,omitempty"`
	Method   string  `json:"method"`
	URL      string  `json:"url"`
	Distance float64 `json:"distance"`
	Reason   string  `json:"reason"`
	// Diff is the rendered expected/actual comparison.
	Diff string `json:"diff"`
}

// Verifier runs checks. The zero value is not usable; use New.
type Verifier struct {
	topN   int
	logger *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithNearMisses sets how many near misses a failing check reports.
func WithNearMisses(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.topN = n
		}
	}
}

// New creates a verifier. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Verifier {
	v := &Verifier{topN: DefaultNearMisses, logger: logging.OrNop(logger)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify counts the requests that satisfy p and checks the count against c.
func Verify(p *matching.RequestPattern, c Criteria, requests []*matching.Request) (*Result, error) {
	return New(nil).Verify(p, c, requests)
}

// Verify counts the requests that satisfy p and checks the count against c.
func (v *Verifier) Verify(p *matching.RequestPattern, c Criteria, requests []*matching.Request) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	for i, r := range requests {
		if matching.Matches(p, r) {
			res.Matched = append(res.Matched, i)
		}
	}
	res.Actual = len(res.Matched)
	res.Passed, res.Expected, res.Message = c.evaluate(res.Actual)

	if !res.Passed && res.Actual < c.minimum() {
		for _, m := range matching.ClosestRequests(p, requests, v.topN) {
			r := requests[m.Index]
			res.NearMisses = append(res.NearMisses, NearMiss{
				Index:    m.Index,
				Method:   r.Method(),
				URL:      r.URL(),
				Distance: m.Distance,
				Reason:   m.Reason,
				Diff:     diff.FromVerdicts(m.Verdicts).String(),
			})
		}
	}

	v.logger.Debug("verification complete",
		"passed", res.Passed,
		"actual", res.Actual,
		"expected", res.Expected,
		"requests", len(requests),
		"nearMisses", len(res.NearMisses))
	return res, nil
}

// VerifyEntries checks journal entries, tagging near misses with entry IDs.
func (v *Verifier) VerifyEntries(p *matching.RequestPattern, c Criteria, entries []*requestlog.Entry) (*Result, error) {
	res, err := v.Verify(p, c, requestlog.Requests(entries))
	if err != nil {
		return nil, err
	}
	for i := range res.NearMisses {
		res.NearMisses[i].EntryID = entries[res.NearMisses[i].Index].ID
	}
	return res, nil
}

// VerifyStore checks the entries of a store, oldest first. A nil filter
// selects every entry.
func (v *Verifier) VerifyStore(p *matching.RequestPattern, c Criteria, store requestlog.Store, filter *requestlog.Filter) (*Result, error) {
	entries := store.List(filter)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return v.VerifyEntries(p, c, entries)
}
