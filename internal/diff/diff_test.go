package diff

import (
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/reqdiff/internal/matching"
	"github.com/getmockd/reqdiff/internal/structured"
)

func observed(method, url string, header http.Header, body string) *matching.Request {
	return matching.NewRequest(matching.RequestData{Method: method, URL: url, Header: header, Body: []byte(body)})
}

func TestJUnitStyleMessage(t *testing.T) {
	assert.Equal(t, " expected:<\nexpected> but was:<\nactual>", JUnitStyleMessage("expected", "actual"))
}

func TestDiff_Scenarios(t *testing.T) {
	nestedJSON := "{\n" +
		"    \"outer\": {\n" +
		"        \"inner:\": {\n" +
		"            \"thing\": 1\n" +
		"        }\n" +
		"    }\n" +
		"}"

	tests := []struct {
		name     string
		pattern  *matching.RequestPattern
		request  *matching.Request
		expected string
		actual   string
	}{
		{
			name:     "method mismatch",
			pattern:  matching.NewRequestPattern(matching.MethodGet, matching.URLEqualTo("/thing")).MustBuild(),
			request:  observed("POST", "/thing", nil, ""),
			expected: "GET\n/thing\n",
			actual:   "POST\n/thing\n",
		},
		{
			name:     "url equal to",
			pattern:  matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/expected")).MustBuild(),
			request:  observed("ANY", "/actual", nil, ""),
			expected: "ANY\n/expected\n",
			actual:   "ANY\n/actual\n",
		},
		{
			name:     "url path matching",
			pattern:  matching.NewRequestPattern(matching.MethodAny, matching.URLPathMatching("/expected/.*")).MustBuild(),
			request:  observed("ANY", "/actual", nil, ""),
			expected: "ANY\n/expected/.*\n",
			actual:   "ANY\n/actual\n",
		},
		{
			name:     "url path matching ignores query on actual side",
			pattern:  matching.NewRequestPattern(matching.MethodGet, matching.URLPathEqualTo("/expected")).MustBuild(),
			request:  observed("GET", "/actual?page=2", nil, ""),
			expected: "GET\n/expected\n",
			actual:   "GET\n/actual\n",
		},
		{
			name: "matching and non-matching headers",
			pattern: matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/thing")).
				WithHeader("Content-Type", matching.EqualTo("application/json")).
				WithHeader("X-My-Header", matching.EqualTo("expected")).
				MustBuild(),
			request: observed("ANY", "/thing", http.Header{
				"Content-Type": {"application/json"},
				"X-My-Header":  {"actual"},
			}, ""),
			expected: "ANY\n/thing\nContent-Type: application/json\nX-My-Header: expected\n",
			actual:   "ANY\n/thing\nContent-Type: application/json\nX-My-Header: actual\n",
		},
		{
			name: "absent header renders an empty line",
			pattern: matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/thing")).
				WithHeader("X-My-Header", matching.EqualTo("expected")).
				MustBuild(),
			request:  observed("ANY", "/thing", nil, ""),
			expected: "ANY\n/thing\nX-My-Header: expected\n",
			actual:   "ANY\n/thing\n\n",
		},
		{
			name: "nested json body",
			pattern: matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/thing")).
				WithRequestBody(matching.EqualToJSON(
					"{\n"+
						"    \"outer\": {\n"+
						"        \"inner\": {\n"+
						"            \"thing\": 1\n"+
						"        }\n"+
						"    }\n"+
						"}", structured.JSONOptions{})).
				MustBuild(),
			request: observed("ANY", "/thing", nil, "{\n    \"outer\": {}\n}"),
			expected: "ANY\n/thing\n" +
				"{\n" +
				"  \"outer\": {\n" +
				"    \"inner\": {\n" +
				"      \"thing\": 1\n" +
				"    }\n" +
				"  }\n" +
				"}",
			actual: "ANY\n/thing\n" +
				"{\n" +
				"  \"outer\": {}\n" +
				"}",
		},
		{
			name: "compact json body is pretty-printed",
			pattern: matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/thing")).
				WithRequestBody(matching.EqualToJSON(`{"outer": {"inner:": {"thing": 1}}}`, structured.JSONOptions{})).
				MustBuild(),
			request: observed("ANY", "/thing", nil, `{"outer": {}}`),
			expected: "ANY\n/thing\n" +
				"{\n" +
				"  \"outer\": {\n" +
				"    \"inner:\": {\n" +
				"      \"thing\": 1\n" +
				"    }\n" +
				"  }\n" +
				"}",
			actual: "ANY\n/thing\n" +
				"{\n" +
				"  \"outer\": {}\n" +
				"}",
		},
		{
			name: "jsonpath expectations repeat the body",
			pattern: matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/thing")).
				WithRequestBody(matching.MatchingJSONPath("@.notfound")).
				WithRequestBody(matching.MatchingJSONPath("@.nothereeither")).
				MustBuild(),
			request:  observed("ANY", "/thing", nil, nestedJSON),
			expected: "ANY\n/thing\n@.notfound\n@.nothereeither",
			actual:   "ANY\n/thing\n" + nestedJSON + "\n" + nestedJSON,
		},
		{
			name: "xml body is pretty-printed",
			pattern: matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/thing")).
				WithRequestBody(matching.EqualToXML(`<my-elements><one attr-one="1111" /><two /><three /></my-elements>`)).
				MustBuild(),
			request: observed("ANY", "/thing", nil, `<my-elements><one attr-one="2222" /><two /><three /></my-elements>`),
			expected: "ANY\n/thing\n" +
				"<my-elements>\n" +
				"  <one attr-one=\"1111\"/>\n" +
				"  <two/>\n" +
				"  <three/>\n" +
				"</my-elements>\n",
			actual: "ANY\n/thing\n" +
				"<my-elements>\n" +
				"  <one attr-one=\"2222\"/>\n" +
				"  <two/>\n" +
				"  <three/>\n" +
				"</my-elements>\n",
		},
		{
			name: "non-matching cookie",
			pattern: matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/thing")).
				WithCookie("my_cookie", matching.EqualTo("expected-cookie")).
				MustBuild(),
			request:  observed("ANY", "/thing", http.Header{"Cookie": {"my_cookie=actual-cookie"}}, ""),
			expected: "ANY\n/thing\nCookie: my_cookie=expected-cookie\n",
			actual:   "ANY\n/thing\nCookie: my_cookie=actual-cookie\n",
		},
		{
			name: "cookie absent from request",
			pattern: matching.NewRequestPattern(matching.MethodAny, matching.URLEqualTo("/thing")).
				WithCookie("my_cookie", matching.EqualTo("expected-cookie")).
				MustBuild(),
			request:  observed("ANY", "/thing", nil, ""),
			expected: "ANY\n/thing\nCookie: my_cookie=expected-cookie\n",
			actual:   "ANY\n/thing\n\n",
		},
		{
			name: "query parameters",
			pattern: matching.NewRequestPattern(matching.MethodGet, matching.URLPathEqualTo("/search")).
				WithQueryParam("q", matching.EqualTo("go")).
				WithQueryParam("page", matching.Matching(`\d+`)).
				MustBuild(),
			request:  observed("GET", "/search?q=rust", nil, ""),
			expected: "GET\n/search\nQuery: q=go\nQuery: page=\\d+\n",
			actual:   "GET\n/search\nQuery: q=rust\n\n",
		},
		{
			name: "absent body clause",
			pattern: matching.NewRequestPattern(matching.MethodPost, nil).
				WithRequestBody(matching.Absent()).
				MustBuild(),
			request:  observed("POST", "/x", nil, "unexpected"),
			expected: "POST\n(any URL)\n(absent)",
			actual:   "POST\n/x\nunexpected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.pattern, tt.request)
			assert.Equal(t, tt.expected, d.ExpectedBlock())
			assert.Equal(t, tt.actual, d.ActualBlock())
			assert.Equal(t, JUnitStyleMessage(tt.expected, tt.actual), d.String())
		})
	}
}

func TestDiff_MethodMismatchMessage(t *testing.T) {
	d := New(
		matching.NewRequestPattern(matching.MethodGet, matching.URLEqualTo("/thing")).MustBuild(),
		observed("POST", "/thing", nil, ""),
	)
	assert.Equal(t, " expected:<\nGET\n/thing\n> but was:<\nPOST\n/thing\n>", d.String())
	assert.False(t, d.Matched())

	mismatches := d.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Equal(t, matching.FacetMethod, mismatches[0].Facet.Kind)
}

func TestDiff_AbsentFacetsKeepLineParity(t *testing.T) {
	p := matching.NewRequestPattern(matching.MethodGet, matching.URLPathEqualTo("/a")).
		WithQueryParam("q", matching.EqualTo("1")).
		WithHeader("X-One", matching.EqualTo("1")).
		WithHeader("X-Two", matching.Contains("2")).
		WithCookie("c", matching.EqualTo("1")).
		MustBuild()

	d := New(p, observed("GET", "/a", nil, ""))
	assert.Equal(t,
		strings.Count(d.ExpectedBlock(), "\n"),
		strings.Count(d.ActualBlock(), "\n"))
}

func TestDiff_MalformedObservedBodyFallsBackToRaw(t *testing.T) {
	p := matching.NewRequestPattern(matching.MethodPost, nil).
		WithRequestBody(matching.EqualToJSON(`{"a": 1}`, structured.JSONOptions{})).
		WithRequestBody(matching.EqualToXML(`<a/>`)).
		MustBuild()

	d := New(p, observed("POST", "/", nil, "not a document"))
	assert.Equal(t, "POST\n/\nnot a document\nnot a document", d.ActualBlock())
}

func TestDiff_MatchingRequest(t *testing.T) {
	p := matching.NewRequestPattern(matching.MethodGet, matching.URLEqualTo("/ok")).
		WithHeader("Accept", matching.EqualTo("text/plain")).
		MustBuild()

	d := New(p, observed("GET", "/ok", http.Header{"Accept": {"text/plain"}}, ""))
	assert.True(t, d.Matched())
	assert.Empty(t, d.Mismatches())
	assert.Equal(t, d.ExpectedBlock(), d.ActualBlock())
}

func TestDiff_Idempotent(t *testing.T) {
	p := matching.NewRequestPattern(matching.MethodPost, matching.URLPathTemplate("/orders/{id}")).
		WithHeader("Content-Type", matching.EqualTo("application/json")).
		WithRequestBody(matching.EqualToJSON(`{"id": 1, "items": [1, 2]}`, structured.JSONOptions{IgnoreArrayOrder: true})).
		MustBuild()
	r := observed("PUT", "/orders/7", http.Header{"Content-Type": {"text/plain"}}, `{"items": [2, 3], "id": 1}`)

	first := New(p, r).String()

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = New(p, r).String()
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, first, got)
	}
}

func TestFromVerdicts(t *testing.T) {
	p := matching.NewRequestPattern(matching.MethodGet, matching.URLEqualTo("/x")).MustBuild()
	r := observed("GET", "/y", nil, "")

	assert.Equal(t, New(p, r).String(), FromVerdicts(matching.Match(p, r)).String())
	assert.Len(t, FromVerdicts(matching.Match(p, r)).Sections(), 2)
	assert.Equal(t, JUnitStyleMessage("", ""), FromVerdicts(nil).String())
}
