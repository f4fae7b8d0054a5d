package verification

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/reqdiff/internal/matching"
	"github.com/getmockd/reqdiff/pkg/requestlog"
)

func request(method, url, body string) *matching.Request {
	return matching.NewRequest(matching.RequestData{Method: method, URL: url, Header: http.Header{}, Body: []byte(body)})
}

func ordersPattern() *matching.RequestPattern {
	return matching.NewRequestPattern(matching.MethodPost, matching.URLPathEqualTo("/orders")).
		WithRequestBody(matching.MatchingJSONPath("$.id")).
		MustBuild()
}

func TestVerify_Passes(t *testing.T) {
	requests := []*matching.Request{
		request("POST", "/orders", `{"id": 1}`),
		request("GET", "/orders", ""),
		request("POST", "/orders", `{"id": 2}`),
	}

	res, err := Verify(ordersPattern(), Exactly(2), requests)
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 2, res.Actual)
	assert.Equal(t, []int{0, 2}, res.Matched)
	assert.Empty(t, res.NearMisses)
}

func TestVerify_ReportsNearMissesWithDiffs(t *testing.T) {
	requests := []*matching.Request{
		request("GET", "/users", ""),
		request("POST", "/orders", `{"name": "x"}`),
		request("PUT", "/orders", `{"id": 1}`),
	}

	res, err := New(nil, WithNearMisses(1)).Verify(ordersPattern(), AtLeast(1), requests)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Zero(t, res.Actual)
	require.Len(t, res.NearMisses, 1)

	nm := res.NearMisses[0]
	assert.Equal(t, "POST", nm.Method)
	assert.Equal(t, "/orders", nm.URL)
	assert.True(t, strings.HasPrefix(nm.Diff, " expected:<\nPOST\n/orders\n$.id> but was:<\nPOST\n/orders\n"), nm.Diff)
	assert.NotEmpty(t, nm.Reason)
}

func TestVerify_NoNearMissesWhenTooMany(t *testing.T) {
	requests := []*matching.Request{
		request("POST", "/orders", `{"id": 1}`),
		request("GET", "/orders", ""),
	}

	res, err := Verify(ordersPattern(), Never(), requests)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Empty(t, res.NearMisses)
}

func TestVerify_InvalidCriteria(t *testing.T) {
	_, err := Verify(ordersPattern(), Criteria{}, nil)
	assert.ErrorIs(t, err, ErrNoCriteria)
}

func TestVerifyStore(t *testing.T) {
	store := requestlog.NewMemoryStore(10)
	for _, e := range []*requestlog.Entry{
		{ID: "first", Method: "POST", URL: "/orders", Body: `{"id": 1}`},
		{ID: "second", Method: "POST", URL: "/orders", Body: `{}`},
		{ID: "third", Method: "GET", URL: "/health"},
	} {
		store.Log(e)
	}

	v := New(nil)

	res, err := v.VerifyStore(ordersPattern(), Exactly(1), store, nil)
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, []int{0}, res.Matched, "entries are checked oldest first")

	res, err = v.VerifyStore(ordersPattern(), Exactly(2), store, nil)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	require.NotEmpty(t, res.NearMisses)
	assert.Equal(t, "second", res.NearMisses[0].EntryID)

	res, err = v.VerifyStore(ordersPattern(), Never(), store, &requestlog.Filter{Method: "GET"})
	require.NoError(t, err)
	assert.True(t, res.Passed)
}
