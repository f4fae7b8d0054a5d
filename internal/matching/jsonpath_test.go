package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/getmockd/reqdiff/internal/structured"
)

func TestMatchingJSONPath_Existence(t *testing.T) {
	body := `{"status": "active", "count": 42, "deleted": null, "items": [{"id": 1, "kind": "x"}, {"id": 2, "kind": "y"}], "user": {"name": "Ada"}}`

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"top-level field", "$.status", true},
		{"nested field", "$.user.name", true},
		{"array element", "$.items[1].id", true},
		{"wildcard", "$.items[*].id", true},
		{"filter", "$.items[?(@.kind == 'y')]", true},
		{"missing field", "$.missing", false},
		{"null field is not a match", "$.deleted", false},
		{"current node root", "@.status", true},
		{"current node root missing", "@.notfound", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := MatchingJSONPath(tt.expr).Evaluate(ValueOf(body))
			assert.Equal(t, tt.want, res.Matched)
			assert.Equal(t, tt.expr, res.Expected)
			assert.Equal(t, body, res.Actual, "actual side renders the raw body")
		})
	}
}

func TestMatchingJSONPath_ValuePattern(t *testing.T) {
	body := `{"status": "active", "count": 42, "enabled": true, "tags": ["a", "b"], "user": {"name": "Ada"}}`

	tests := []struct {
		name  string
		expr  string
		value *Pattern
		want  bool
	}{
		{"string equal", "$.status", EqualTo("active"), true},
		{"string mismatch", "$.status", EqualTo("inactive"), false},
		{"number by literal", "$.count", EqualTo("42"), true},
		{"boolean by literal", "$.enabled", EqualTo("true"), true},
		{"regex", "$.status", Matching("act.*"), true},
		{"contains", "$.user.name", Contains("d"), true},
		{"any of many nodes", "$.tags[*]", EqualTo("b"), true},
		{"none of many nodes", "$.tags[*]", EqualTo("c"), false},
		{"object node as json", "$.user", EqualToJSON(`{"name": "Ada"}`, structured.JSONOptions{}), true},
		{"missing node", "$.missing", EqualTo("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := MatchingJSONPathValue(tt.expr, tt.value).Evaluate(ValueOf(body))
			assert.Equal(t, tt.want, res.Matched)
		})
	}
}

func TestMatchingJSONPath_NotJSON(t *testing.T) {
	res := MatchingJSONPath("$.a").Evaluate(ValueOf("<xml/>"))
	assert.False(t, res.Matched)
	assert.Equal(t, "<xml/>", res.Actual)
}

func TestMatchingJSONPath_InvalidExpression(t *testing.T) {
	p := MatchingJSONPath("$.[[[")
	assert.ErrorIs(t, p.Err(), ErrInvalidPattern)

	var ce *ConfigError
	assert.ErrorAs(t, p.Err(), &ce)
	assert.Equal(t, KindMatchesJSONPath, ce.Kind)
}

func TestMatchingJSONPathValue_PropagatesNestedError(t *testing.T) {
	p := MatchingJSONPathValue("$.a", Matching("("))
	assert.ErrorIs(t, p.Err(), ErrInvalidPattern)
}

func TestMatchingJSONPathValue_Expected(t *testing.T) {
	assert.Equal(t, "$.status equalTo active", MatchingJSONPathValue("$.status", EqualTo("active")).Expected())
}

func TestValidateJSONPathExpression(t *testing.T) {
	assert.NoError(t, ValidateJSONPathExpression("$.store.book[0].title"))
	assert.Error(t, ValidateJSONPathExpression("$.[[["))
}

func TestMatchingXPath(t *testing.T) {
	body := `<order id="7"><item sku="a-1">Widget</item><item sku="b-2">Gadget</item><note/></order>`

	tests := []struct {
		name  string
		expr  string
		value *Pattern
		want  bool
	}{
		{"element exists", "/order/item", nil, true},
		{"descendant exists", "//note", nil, true},
		{"element missing", "/order/missing", nil, false},
		{"text value", "/order/item", EqualTo("Gadget"), true},
		{"text value mismatch", "/order/item", EqualTo("Gizmo"), false},
		{"predicate", "/order/item[@sku='b-2']", EqualTo("Gadget"), true},
		{"attribute", "/order/@id", EqualTo("7"), true},
		{"attribute of many", "//item/@sku", Matching(`b-\d`), true},
		{"attribute missing", "/order/@missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MatchingXPathValue(tt.expr, tt.value)
			assert.NoError(t, p.Err())
			res := p.Evaluate(ValueOf(body))
			assert.Equal(t, tt.want, res.Matched)
			assert.Equal(t, body, res.Actual)
		})
	}
}

func TestMatchingXPath_NotXML(t *testing.T) {
	res := MatchingXPath("/a").Evaluate(ValueOf(`{"a": 1}`))
	assert.False(t, res.Matched)
}

func TestMatchingXPath_InvalidExpression(t *testing.T) {
	assert.ErrorIs(t, MatchingXPath("/a[").Err(), ErrInvalidPattern)
}
