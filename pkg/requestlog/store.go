package requestlog

import "time"

// Logger is the minimal interface for recording entries. Capture points
// accept it so they work with any store.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for request journal storage.
type Store interface {
	Logger

	// Get retrieves an entry by ID, or nil.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for listing entries. Zero fields do not filter.
type Filter struct {
	// Method filters by HTTP method (case-insensitive).
	Method string

	// PathPrefix filters by URL path prefix.
	PathPrefix string

	// MatchedID filters by matched stub ID.
	MatchedID string

	// Unmatched keeps only entries no stub served.
	Unmatched bool

	// Since keeps entries received at or after this time.
	Since time.Time

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}

// Subscriber is a channel that receives new entries.
type Subscriber chan *Entry

// SubscribableStore extends Store with live updates.
type SubscribableStore interface {
	Store

	// Subscribe registers a subscriber. The returned function unsubscribes
	// and closes the channel.
	Subscribe() (Subscriber, func())
}
