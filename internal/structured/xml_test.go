package structured

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseXML(t *testing.T, s string) *etree.Element {
	t.Helper()
	e, err := ParseXML(s)
	require.NoError(t, err)
	return e
}

func TestParseXML_Errors(t *testing.T) {
	for _, input := range []string{"", "plain text", `{"a": 1}`, "<open><inner></open>"} {
		_, err := ParseXML(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestPrettyXML(t *testing.T) {
	root := mustParseXML(t, `<my-elements><one attr-one="1111" /><two /><three /></my-elements>`)

	want := "<my-elements>\n" +
		"  <one attr-one=\"1111\"/>\n" +
		"  <two/>\n" +
		"  <three/>\n" +
		"</my-elements>\n"
	assert.Equal(t, want, PrettyXML(root))
}

func TestPrettyXML_TextAndNesting(t *testing.T) {
	root := mustParseXML(t, `<?xml version="1.0"?>
<order id="7" status="new">
    <!-- a comment -->
    <item sku="a&amp;b">  Widget &lt;large&gt;  </item>
    <notes><note>first</note></notes>
</order>`)

	want := "<order id=\"7\" status=\"new\">\n" +
		"  <item sku=\"a&amp;b\">Widget &lt;large&gt;</item>\n" +
		"  <notes>\n" +
		"    <note>first</note>\n" +
		"  </notes>\n" +
		"</order>\n"
	assert.Equal(t, want, PrettyXML(root))
}

func TestPrettyXML_Escaping(t *testing.T) {
	root := mustParseXML(t, `<q title='say "hi" &amp; &lt;go&gt;'>it's "quoted" &amp; 3 &gt; 2</q>`)

	want := "<q title=\"say &quot;hi&quot; &amp; &lt;go>\">it's \"quoted\" &amp; 3 &gt; 2</q>\n"
	assert.Equal(t, want, PrettyXML(root))
	assert.True(t, CompareXML(root, mustParseXML(t, PrettyXML(root))).Equal)
}

func TestPrettyXML_RoundTrip(t *testing.T) {
	docs := []string{
		`<a x="1"><b>text</b><c/><d y="2"><e/></d></a>`,
		`<ns:root xmlns:ns="urn:test"><ns:child ns:attr="v">t</ns:child></ns:root>`,
	}
	for _, doc := range docs {
		original := mustParseXML(t, doc)
		reparsed := mustParseXML(t, PrettyXML(original))
		assert.True(t, CompareXML(original, reparsed).Equal, doc)
	}
}

func TestCompareXML(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		want     bool
	}{
		{name: "identical", expected: `<a><b>1</b></a>`, actual: `<a><b>1</b></a>`, want: true},
		{name: "insignificant whitespace", expected: `<a><b>1</b></a>`, actual: "<a>\n  <b> 1 </b>\n</a>", want: true},
		{name: "attribute order", expected: `<a x="1" y="2"/>`, actual: `<a y="2" x="1"/>`, want: true},
		{name: "attribute value", expected: `<a x="1"/>`, actual: `<a x="2"/>`, want: false},
		{name: "missing attribute", expected: `<a x="1"/>`, actual: `<a/>`, want: false},
		{name: "extra attribute", expected: `<a/>`, actual: `<a x="1"/>`, want: false},
		{name: "text", expected: `<a>x</a>`, actual: `<a>y</a>`, want: false},
		{name: "element name", expected: `<a/>`, actual: `<b/>`, want: false},
		{name: "child count", expected: `<a><b/><c/></a>`, actual: `<a><b/></a>`, want: false},
		{name: "child order", expected: `<a><b/><c/></a>`, actual: `<a><c/><b/></a>`, want: false},
		{name: "prefix differs, namespace same", expected: `<p:a xmlns:p="urn:x"/>`, actual: `<q:a xmlns:q="urn:x"/>`, want: true},
		{name: "comments ignored", expected: `<a><b/></a>`, actual: `<a><!-- c --><b/></a>`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareXML(mustParseXML(t, tt.expected), mustParseXML(t, tt.actual))
			assert.Equal(t, tt.want, got.Equal)
		})
	}
}

func TestReduceXMLText(t *testing.T) {
	e, a := ReduceXMLText(`<a><b/></a>`, `<a><c/></a>`)
	assert.Equal(t, "<a>\n  <b/>\n</a>\n", e)
	assert.Equal(t, "<a>\n  <c/>\n</a>\n", a)

	e, a = ReduceXMLText(`<a/>`, `not xml`)
	assert.Equal(t, "<a/>\n", e)
	assert.Equal(t, "not xml", a)
}
