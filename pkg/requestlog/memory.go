package requestlog

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/reqdiff/internal/matching"
)

// DefaultCapacity is used when NewMemoryStore is given a non-positive size.
const DefaultCapacity = 1000

// MemoryStore is a bounded in-memory journal. When full, the oldest entry is
// evicted. It implements SubscribableStore and is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    []*Entry
	maxEntries int

	subMu       sync.RWMutex
	subscribers map[Subscriber]struct{}
}

var _ SubscribableStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding at most maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultCapacity
	}
	return &MemoryStore{
		entries:     make([]*Entry, 0, min(maxEntries, 64)),
		maxEntries:  maxEntries,
		subscribers: make(map[Subscriber]struct{}),
	}
}

// Log records an entry, assigning an ID and timestamp when missing.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}

	s.mu.Lock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if len(s.entries) >= s.maxEntries {
		s.entries[0] = nil
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	s.subMu.RLock()
	for sub := range s.subscribers {
		select {
		case sub <- entry:
		default:
			// slow subscriber; drop
		}
	}
	s.subMu.RUnlock()
}

// Get retrieves an entry by ID.
func (s *MemoryStore) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

// List returns entries newest first.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		if filter == nil || filter.matches(s.entries[i]) {
			result = append(result, s.entries[i])
		}
	}

	return paginate(result, filter)
}

// paginate applies the filter's offset and limit.
func paginate(result []*Entry, filter *Filter) []*Entry {
	if filter == nil {
		return result
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*Entry{}
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result
}

// Requests returns the filtered entries as matching requests, oldest first,
// which is the order verification reports them in.
func (s *MemoryStore) Requests(filter *Filter) []*matching.Request {
	entries := s.List(filter)
	out := make([]*matching.Request, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e.ToRequest()
	}
	return out
}

func (f *Filter) matches(e *Entry) bool {
	if f.Method != "" && !strings.EqualFold(e.Method, f.Method) {
		return false
	}
	if f.PathPrefix != "" && !strings.HasPrefix(pathOf(e.URL), f.PathPrefix) {
		return false
	}
	if f.MatchedID != "" && e.MatchedStubID != f.MatchedID {
		return false
	}
	if f.Unmatched && e.MatchedStubID != "" {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

func pathOf(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*Entry, 0, min(s.maxEntries, 64))
}

// Count returns the number of entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers a subscriber to receive new entries.
func (s *MemoryStore) Subscribe() (Subscriber, func()) {
	ch := make(Subscriber, 100)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}
