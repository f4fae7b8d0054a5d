package matching

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// RequestData carries the raw parts of an observed request from the transport
// layer.
type RequestData struct {
	Method string
	// URL is the request URI: path plus optional query string.
	URL    string
	Header http.Header
	// Cookies are the parsed request cookies. When nil, cookies are parsed
	// from the Cookie header.
	Cookies map[string]string
	Body    []byte
}

// Request is a read-only view of an observed HTTP request. Build one with
// NewRequest or FromHTTP.
type Request struct {
	method  string
	url     string
	header  http.Header
	cookies map[string]string
	body    []byte
}

// NewRequest copies d into an immutable Request. Header names are
// canonicalized so lookups are case-insensitive.
func NewRequest(d RequestData) *Request {
	header := make(http.Header, len(d.Header))
	for name, values := range d.Header {
		for _, v := range values {
			header.Add(name, v)
		}
	}

	cookies := maps.Clone(d.Cookies)
	if cookies == nil {
		cookies = parseCookies(header)
	}

	return &Request{
		method:  d.Method,
		url:     d.URL,
		header:  header,
		cookies: cookies,
		body:    slices.Clone(d.Body),
	}
}

// FromHTTP builds a Request from a server-side *http.Request. The body must be
// read by the caller, since r.Body can only be consumed once.
func FromHTTP(r *http.Request, body []byte) *Request {
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}
	return NewRequest(RequestData{
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		Header:  r.Header,
		Cookies: cookies,
		Body:    body,
	})
}

func parseCookies(header http.Header) map[string]string {
	cookies := make(map[string]string)
	if len(header.Values("Cookie")) == 0 {
		return cookies
	}
	probe := &http.Request{Header: http.Header{"Cookie": header.Values("Cookie")}}
	for _, c := range probe.Cookies() {
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}
	return cookies
}

// Method returns the request method.
func (r *Request) Method() string { return r.method }

// URL returns the request URI including the query string.
func (r *Request) URL() string { return r.url }

// Path returns the URL path without query string.
func (r *Request) Path() string { return urlPath(r.url) }

// Query returns the parsed query parameters. Malformed pairs are skipped.
func (r *Request) Query() url.Values {
	uri, _, _ := strings.Cut(r.url, "#")
	_, rawQuery, _ := strings.Cut(uri, "?")
	values, _ := url.ParseQuery(rawQuery)
	return values
}

// Header returns a copy of the request headers.
func (r *Request) Header() http.Header { return r.header.Clone() }

// HeaderValues returns every value of a header (case-insensitive name).
func (r *Request) HeaderValues(name string) []string {
	return slices.Clone(r.header.Values(name))
}

// HasHeader reports whether the header is present.
func (r *Request) HasHeader(name string) bool {
	return len(r.header.Values(name)) > 0
}

// Cookie returns a cookie value and whether it was present.
func (r *Request) Cookie(name string) (string, bool) {
	v, ok := r.cookies[name]
	return v, ok
}

// Cookies returns a copy of the parsed cookies.
func (r *Request) Cookies() map[string]string { return maps.Clone(r.cookies) }

// Body returns a copy of the body bytes.
func (r *Request) Body() []byte { return slices.Clone(r.body) }

// BodyString returns the body as a string.
func (r *Request) BodyString() string { return string(r.body) }

// HasBody reports whether the request carries a non-empty body.
func (r *Request) HasBody() bool { return len(r.body) > 0 }
