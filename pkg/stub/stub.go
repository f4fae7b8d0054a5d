package stub

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/getmockd/reqdiff/internal/matching"
	"github.com/getmockd/reqdiff/pkg/logging"
)

// Stub is a validated, built definition.
type Stub struct {
	ID       string
	Name     string
	Priority int
	Enabled  bool
	// Source is the file the stub was loaded from, if any.
	Source  string
	Pattern *matching.RequestPattern
}

// New builds a stub from a definition, assigning a random ID when the
// definition has none.
func New(def Definition) (*Stub, error) {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	p, err := def.Build()
	if err != nil {
		return nil, err
	}
	enabled := def.Enabled == nil || *def.Enabled
	return &Stub{
		ID:       def.ID,
		Name:     def.Name,
		Priority: def.Priority,
		Enabled:  enabled,
		Pattern:  p,
	}, nil
}

// Collection is an ordered set of stubs. It is immutable once created and
// safe for concurrent use.
type Collection struct {
	stubs  []*Stub
	logger *slog.Logger
}

// NewCollection creates a collection. Nil stubs are dropped.
func NewCollection(stubs []*Stub, logger *slog.Logger) *Collection {
	c := &Collection{logger: logging.OrNop(logger)}
	for _, s := range stubs {
		if s != nil {
			c.stubs = append(c.stubs, s)
		}
	}
	return c
}

// Stubs returns the stubs in declaration order.
func (c *Collection) Stubs() []*Stub {
	return append([]*Stub(nil), c.stubs...)
}

// Len returns the number of stubs.
func (c *Collection) Len() int { return len(c.stubs) }

// Get returns the stub with the given ID, or nil.
func (c *Collection) Get(id string) *Stub {
	for _, s := range c.stubs {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// MatchResult is the outcome of matching one request against a collection.
type MatchResult struct {
	// Stub is the selected stub, or nil when none matched.
	Stub *Stub
	// Verdicts are the facet verdicts of the selected stub.
	Verdicts matching.Verdicts
	// NearMisses are the closest non-matching stubs when none matched.
	NearMisses []matching.NearMiss
}

// Match selects the enabled stub that matches r. Among several matches the
// highest priority wins, then declaration order. When nothing matches, up
// to topN near misses are reported.
func (c *Collection) Match(r *matching.Request, topN int) MatchResult {
	type hit struct {
		index int
		stub  *Stub
		v     matching.Verdicts
	}
	var hits []hit
	for i, s := range c.stubs {
		if !s.Enabled {
			continue
		}
		v := matching.Match(s.Pattern, r)
		if v.Matched() {
			hits = append(hits, hit{index: i, stub: s, v: v})
		}
	}

	if len(hits) == 0 {
		misses := matching.CollectNearMisses(c.candidates(), r, topN)
		c.logger.Debug("no stub matched", "method", r.Method(), "url", r.URL(), "nearMisses", len(misses))
		return MatchResult{NearMisses: misses}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].stub.Priority != hits[j].stub.Priority {
			return hits[i].stub.Priority > hits[j].stub.Priority
		}
		return hits[i].index < hits[j].index
	})
	best := hits[0]
	c.logger.Debug("stub matched", "stub", best.stub.ID, "method", r.Method(), "url", r.URL(), "candidates", len(hits))
	return MatchResult{Stub: best.stub, Verdicts: best.v}
}

// candidates returns the enabled stubs for near-miss ranking.
func (c *Collection) candidates() []matching.Candidate {
	out := make([]matching.Candidate, 0, len(c.stubs))
	for _, s := range c.stubs {
		if s.Enabled {
			out = append(out, matching.Candidate{ID: s.ID, Name: s.Name, Pattern: s.Pattern})
		}
	}
	return out
}
