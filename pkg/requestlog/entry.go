package requestlog

import (
	"bytes"
	"io"
	"maps"
	"net/http"
	"time"

	"github.com/getmockd/reqdiff/internal/matching"
)

// Entry captures one observed HTTP request.
type Entry struct {
	// ID is a unique identifier for the entry. Assigned by the store when
	// empty.
	ID string `json:"id" yaml:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Method is the HTTP method.
	Method string `json:"method" yaml:"method"`

	// URL is the request URI: path plus optional query string.
	URL string `json:"url" yaml:"url"`

	// Headers are the request headers (multi-value).
	Headers map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Cookies are the parsed request cookies. When empty they are derived
	// from the Cookie header.
	Cookies map[string]string `json:"cookies,omitempty" yaml:"cookies,omitempty"`

	// Body is the request body (truncated to MaxBodySize when captured).
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	// BodySize is the original body size in bytes.
	BodySize int `json:"bodySize,omitempty" yaml:"bodySize,omitempty"`

	// RemoteAddr is the client address.
	RemoteAddr string `json:"remoteAddr,omitempty" yaml:"remoteAddr,omitempty"`

	// MatchedStubID is the ID of the stub that served the request, if any.
	MatchedStubID string `json:"matchedStubId,omitempty" yaml:"matchedStubId,omitempty"`
}

// MaxBodySize bounds the body kept by NewEntry.
const MaxBodySize = 1 << 20

// NewEntry captures r with an already-read body. The body is truncated to
// MaxBodySize; BodySize keeps the original length.
func NewEntry(r *http.Request, body []byte) *Entry {
	e := &Entry{
		Timestamp:  time.Now(),
		Method:     r.Method,
		URL:        r.URL.RequestURI(),
		Headers:    map[string][]string(r.Header.Clone()),
		BodySize:   len(body),
		RemoteAddr: r.RemoteAddr,
	}
	if len(body) > MaxBodySize {
		body = body[:MaxBodySize]
	}
	e.Body = string(body)
	if cookies := r.Cookies(); len(cookies) > 0 {
		e.Cookies = make(map[string]string, len(cookies))
		for _, c := range cookies {
			if _, seen := e.Cookies[c.Name]; !seen {
				e.Cookies[c.Name] = c.Value
			}
		}
	}
	return e
}

// ToRequest converts the entry to a matching.Request.
func (e *Entry) ToRequest() *matching.Request {
	var cookies map[string]string
	if len(e.Cookies) > 0 {
		cookies = maps.Clone(e.Cookies)
	}
	return matching.NewRequest(matching.RequestData{
		Method:  e.Method,
		URL:     e.URL,
		Header:  http.Header(e.Headers),
		Cookies: cookies,
		Body:    []byte(e.Body),
	})
}

// Requests converts entries to matching requests, preserving order.
func Requests(entries []*Entry) []*matching.Request {
	out := make([]*matching.Request, len(entries))
	for i, e := range entries {
		out[i] = e.ToRequest()
	}
	return out
}

// readBody drains r.Body and replaces it with a fresh reader so the wrapped
// handler still sees the full body.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, err
}
