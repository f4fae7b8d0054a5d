package requestlog

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/reqdiff/internal/matching"
)

// ── Entry tests ──────────────────────────────────────────────────────────────

func TestNewEntry(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/orders?id=7", nil)
	r.Header.Set("Content-Type", "application/json")
	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	e := NewEntry(r, []byte(`{"a":1}`))

	assert.Equal(t, "POST", e.Method)
	assert.Equal(t, "/orders?id=7", e.URL)
	assert.Equal(t, []string{"application/json"}, e.Headers["Content-Type"])
	assert.Equal(t, map[string]string{"session": "abc"}, e.Cookies)
	assert.Equal(t, `{"a":1}`, e.Body)
	assert.Equal(t, 7, e.BodySize)
	assert.False(t, e.Timestamp.IsZero())
}

func TestNewEntry_TruncatesBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/big", nil)
	body := bytes.Repeat([]byte("x"), MaxBodySize+10)

	e := NewEntry(r, body)
	assert.Len(t, e.Body, MaxBodySize)
	assert.Equal(t, MaxBodySize+10, e.BodySize)
}

func TestEntry_ToRequest(t *testing.T) {
	e := &Entry{
		Method:  "GET",
		URL:     "/things?x=1",
		Headers: map[string][]string{"accept": {"text/plain"}, "Cookie": {"a=from-header"}},
		Body:    "hello",
	}

	r := e.ToRequest()
	assert.Equal(t, "GET", r.Method())
	assert.Equal(t, "/things", r.Path())
	assert.Equal(t, []string{"text/plain"}, r.HeaderValues("Accept"))
	v, ok := r.Cookie("a")
	assert.True(t, ok)
	assert.Equal(t, "from-header", v)
	assert.Equal(t, "hello", r.BodyString())

	e.Cookies = map[string]string{"a": "explicit"}
	v, _ = e.ToRequest().Cookie("a")
	assert.Equal(t, "explicit", v)
}

// ── MemoryStore tests ────────────────────────────────────────────────────────

func entry(method, url string) *Entry {
	return &Entry{Method: method, URL: url}
}

func TestStore_LogAndGet(t *testing.T) {
	s := NewMemoryStore(10)
	e := entry("GET", "/a")
	s.Log(e)

	require.NotEmpty(t, e.ID, "store assigns an ID")
	assert.False(t, e.Timestamp.IsZero())
	assert.Same(t, e, s.Get(e.ID))
	assert.Nil(t, s.Get("nope"))
	assert.Equal(t, 1, s.Count())

	s.Log(nil)
	assert.Equal(t, 1, s.Count())
}

func TestStore_KeepsGivenID(t *testing.T) {
	s := NewMemoryStore(10)
	s.Log(&Entry{ID: "req-1", Method: "GET", URL: "/"})
	assert.NotNil(t, s.Get("req-1"))
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := NewMemoryStore(10)
	for _, u := range []string{"/1", "/2", "/3"} {
		s.Log(entry("GET", u))
	}

	list := s.List(nil)
	require.Len(t, list, 3)
	assert.Equal(t, "/3", list[0].URL)
	assert.Equal(t, "/1", list[2].URL)
}

func TestStore_ListFilters(t *testing.T) {
	s := NewMemoryStore(10)
	old := time.Now().Add(-time.Hour)
	s.Log(&Entry{Method: "GET", URL: "/api/users?page=1", Timestamp: old})
	s.Log(&Entry{Method: "POST", URL: "/api/users", MatchedStubID: "create-user"})
	s.Log(&Entry{Method: "post", URL: "/health"})

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"method is case-insensitive", Filter{Method: "POST"}, []string{"/health", "/api/users"}},
		{"path prefix ignores query", Filter{PathPrefix: "/api/"}, []string{"/api/users", "/api/users?page=1"}},
		{"matched id", Filter{MatchedID: "create-user"}, []string{"/api/users"}},
		{"unmatched", Filter{Unmatched: true}, []string{"/health", "/api/users?page=1"}},
		{"since", Filter{Since: old.Add(time.Minute)}, []string{"/health", "/api/users"}},
		{"limit", Filter{Limit: 1}, []string{"/health"}},
		{"offset", Filter{Offset: 2}, []string{"/api/users?page=1"}},
		{"offset past end", Filter{Offset: 5}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filter
			urls := []string{}
			for _, e := range s.List(&f) {
				urls = append(urls, e.URL)
			}
			assert.Equal(t, tt.want, urls)
		})
	}
}

func TestStore_Requests_OldestFirst(t *testing.T) {
	s := NewMemoryStore(10)
	s.Log(entry("GET", "/1"))
	s.Log(entry("GET", "/2"))

	reqs := s.Requests(nil)
	require.Len(t, reqs, 2)
	assert.Equal(t, "/1", reqs[0].URL())
	assert.Equal(t, "/2", reqs[1].URL())
}

func TestStore_MaxCapacityEvictsOldest(t *testing.T) {
	s := NewMemoryStore(2)
	a, b, c := entry("GET", "/a"), entry("GET", "/b"), entry("GET", "/c")
	s.Log(a)
	s.Log(b)
	s.Log(c)

	assert.Equal(t, 2, s.Count())
	assert.Nil(t, s.Get(a.ID))
	assert.NotNil(t, s.Get(c.ID))
}

func TestStore_DefaultCapacity(t *testing.T) {
	s := NewMemoryStore(0)
	assert.Equal(t, DefaultCapacity, s.maxEntries)
}

func TestStore_Clear(t *testing.T) {
	s := NewMemoryStore(10)
	s.Log(entry("GET", "/a"))
	s.Clear()
	assert.Zero(t, s.Count())
	assert.Empty(t, s.List(nil))
}

func TestStore_Subscribe(t *testing.T) {
	s := NewMemoryStore(10)
	sub, unsubscribe := s.Subscribe()

	e := entry("GET", "/live")
	s.Log(e)

	select {
	case got := <-sub:
		assert.Same(t, e, got)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive entry")
	}

	unsubscribe()
	unsubscribe()
	_, open := <-sub
	assert.False(t, open)

	s.Log(entry("GET", "/after"))
}

func TestStore_ConcurrentLogAndRead(t *testing.T) {
	s := NewMemoryStore(50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Log(entry("GET", "/c"))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.List(&Filter{Limit: 5})
				_ = s.Count()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Count())
}

// ── Capture tests ────────────────────────────────────────────────────────────

func TestCaptureHandler(t *testing.T) {
	s := NewMemoryStore(10)
	var seenBody string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seenBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(CaptureHandler(s, next, nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/orders?x=1", "application/json", strings.NewReader(`{"id":1}`))
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, `{"id":1}`, seenBody, "downstream handler still sees the body")

	require.Equal(t, 1, s.Count())
	e := s.List(nil)[0]
	assert.Equal(t, "POST", e.Method)
	assert.Equal(t, "/orders?x=1", e.URL)
	assert.Equal(t, `{"id":1}`, e.Body)

	p := matching.NewRequestPattern(matching.MethodPost, matching.URLPathEqualTo("/orders")).
		WithHeader("Content-Type", matching.EqualTo("application/json")).
		WithRequestBody(matching.MatchingJSONPath("$.id")).
		MustBuild()
	assert.True(t, matching.Matches(p, e.ToRequest()))
}

// ── File tests ───────────────────────────────────────────────────────────────

func TestLoadFile_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "captures.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[
		{"method": "GET", "url": "/a", "headers": {"Accept": ["text/plain"]}},
		{"method": "POST", "url": "/b", "body": "{\"k\": 1}"}
	]`), 0o644))

	yamlPath := filepath.Join(dir, "one.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("method: DELETE\nurl: /c\ncookies:\n  session: abc\n"), 0o644))

	entries, err := LoadFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"text/plain"}, entries[0].Headers["Accept"])
	assert.Equal(t, `{"k": 1}`, entries[1].Body)

	entries, err = LoadFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].Cookies["session"])

	s := NewMemoryStore(10)
	n, err := LoadInto(s, filepath.Join(dir, "*.json"), yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, s.Count())
}

func TestSaveFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	in := []*Entry{{ID: "1", Method: "GET", URL: "/a", Body: "x"}}

	require.NoError(t, SaveFile(path, in))
	out, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "/a", out[0].URL)
	assert.Equal(t, "x", out[0].Body)
}

func TestSaveFile_RoundTripKeepsTemplates(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	body := `{"tpl":"${HOME}","d":"${MISSING:-x}"}`
	in := []*Entry{{
		ID:      "1",
		Method:  "POST",
		URL:     "/render?q=${HOME}",
		Headers: map[string][]string{"X-Template": {"${HOME}"}},
		Body:    body,
	}}

	for _, name := range []string{"captures.json", "captures.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveFile(path, in))

			out, err := LoadFile(path)
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, body, out[0].Body)
			assert.Equal(t, "/render?q=${HOME}", out[0].URL)
			assert.Equal(t, []string{"${HOME}"}, out[0].Headers["X-Template"])
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}
