package matching

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/ohler55/ojg/jp"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"

	"github.com/getmockd/reqdiff/internal/structured"
)

// Kind identifies the match strategy of a Pattern.
type Kind int

// Pattern kinds.
const (
	KindEqualTo Kind = iota
	KindMatches
	KindDoesNotMatch
	KindEqualToJSON
	KindEqualToXML
	KindMatchesJSONPath
	KindMatchesXPath
	KindMatchesJSONSchema
	KindContains
	KindAbsent
)

var kindNames = map[Kind]string{
	KindEqualTo:           "equalTo",
	KindMatches:           "matches",
	KindDoesNotMatch:      "doesNotMatch",
	KindEqualToJSON:       "equalToJson",
	KindEqualToXML:        "equalToXml",
	KindMatchesJSONPath:   "matchesJsonPath",
	KindMatchesXPath:      "matchesXPath",
	KindMatchesJSONSchema: "matchesJsonSchema",
	KindContains:          "contains",
	KindAbsent:            "absent",
}

// String returns the kind's name as used in stub definitions.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AbsentRendering is the expected-side rendering of an absent pattern.
const AbsentRendering = "(absent)"

var errNoRootElement = errors.New("expected XML document has no root element")

// Value is an observed facet value. The zero Value is absent.
type Value struct {
	s       string
	present bool
}

// NoValue is the absent sentinel.
var NoValue = Value{}

// ValueOf returns a present Value.
func ValueOf(s string) Value {
	return Value{s: s, present: true}
}

// String returns the value, or "" when absent.
func (v Value) String() string { return v.s }

// Present reports whether the facet was present in the observed request.
func (v Value) Present() bool { return v.present }

// Pattern is a single-attribute matcher. Construct one with EqualTo, Matching,
// EqualToJSON and friends; a Pattern is immutable afterwards.
//
// Constructors that compile an expression report failures through Err rather
// than a second return value so patterns can be passed inline to the
// RequestPatternBuilder, whose Build surfaces them.
type Pattern struct {
	kind       Kind
	expression string
	expected   string // canonical expected-side rendering
	err        error

	ignoreCase bool
	re         *regexp.Regexp

	jsonExpected any
	jsonOptions  structured.JSONOptions

	xmlExpected *etree.Element

	jsonPath  jp.Expr
	xpath     etree.Path
	xpathAttr string
	value     *Pattern // nested matcher for JSONPath/XPath results

	schema *jsonschema.Schema
}

// Kind returns the pattern's match strategy.
func (p *Pattern) Kind() Kind { return p.kind }

// Expression returns the expected value, regex, query or document as given.
func (p *Pattern) Expression() string { return p.expression }

// Expected returns the canonical expected-side rendering.
func (p *Pattern) Expected() string { return p.expected }

// Err returns the configuration error captured at construction, if any.
func (p *Pattern) Err() error { return p.err }

// ValuePattern returns the nested matcher of a JSONPath or XPath pattern.
func (p *Pattern) ValuePattern() *Pattern { return p.value }

// JSONOptions returns the comparison options of an equalToJson pattern.
func (p *Pattern) JSONOptions() structured.JSONOptions { return p.jsonOptions }

// IgnoreCase reports whether an equalTo pattern folds case.
func (p *Pattern) IgnoreCase() bool { return p.ignoreCase }

// EqualTo matches values exactly equal to expected.
func EqualTo(expected string) *Pattern {
	return &Pattern{kind: KindEqualTo, expression: expected, expected: expected}
}

// EqualToIgnoreCase matches values equal to expected under Unicode case folding.
func EqualToIgnoreCase(expected string) *Pattern {
	p := EqualTo(expected)
	p.ignoreCase = true
	return p
}

// Contains matches values containing substring.
func Contains(substring string) *Pattern {
	return &Pattern{kind: KindContains, expression: substring, expected: substring}
}

// Matching matches values the regular expression matches in full.
func Matching(expr string) *Pattern {
	return newRegexPattern(KindMatches, expr)
}

// DoesNotMatch matches values the regular expression does not match in full.
func DoesNotMatch(expr string) *Pattern {
	return newRegexPattern(KindDoesNotMatch, expr)
}

func newRegexPattern(kind Kind, expr string) *Pattern {
	p := &Pattern{kind: kind, expression: expr, expected: expr}
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		p.err = &ConfigError{Kind: kind, Expression: expr, Err: err}
		return p
	}
	p.re = re
	return p
}

// Absent matches only when the facet is missing from the observed request.
func Absent() *Pattern {
	return &Pattern{kind: KindAbsent, expected: AbsentRendering}
}

// EqualToJSON matches JSON documents structurally equal to expected.
func EqualToJSON(expected string, opts structured.JSONOptions) *Pattern {
	p := &Pattern{kind: KindEqualToJSON, expression: expected, expected: expected, jsonOptions: opts}
	doc, err := structured.ParseJSON(expected)
	if err != nil {
		p.err = &ConfigError{Kind: KindEqualToJSON, Expression: expected, Err: err}
		return p
	}
	p.jsonExpected = doc
	p.expected = structured.PrettyJSON(doc)
	return p
}

// EqualToXML matches XML documents structurally equal to expected.
func EqualToXML(expected string) *Pattern {
	p := &Pattern{kind: KindEqualToXML, expression: expected, expected: expected}
	root, err := structured.ParseXML(expected)
	if err != nil {
		p.err = &ConfigError{Kind: KindEqualToXML, Expression: expected, Err: err}
		return p
	}
	p.xmlExpected = root
	p.expected = structured.PrettyXML(root)
	return p
}

// MatchingJSONPath matches JSON documents in which expr selects at least one
// non-null node.
func MatchingJSONPath(expr string) *Pattern {
	return MatchingJSONPathValue(expr, nil)
}

// MatchingJSONPathValue matches JSON documents in which expr selects a node
// whose value satisfies value. A nil value reduces to an existence check.
// String nodes are matched by their content, other nodes by their compact
// JSON encoding.
func MatchingJSONPathValue(expr string, value *Pattern) *Pattern {
	p := &Pattern{kind: KindMatchesJSONPath, expression: expr, value: value}
	p.expected = queryRendering(expr, value)
	x, err := jp.ParseString(expr)
	if err != nil {
		p.err = &ConfigError{Kind: KindMatchesJSONPath, Expression: expr, Err: err}
		return p
	}
	p.jsonPath = x
	if value != nil && value.err != nil {
		p.err = value.err
	}
	return p
}

// MatchingXPath matches XML documents in which expr selects at least one
// element. A trailing "/@name" step selects an attribute instead.
func MatchingXPath(expr string) *Pattern {
	return MatchingXPathValue(expr, nil)
}

// MatchingXPathValue matches XML documents in which expr selects an element
// whose trimmed text (or selected attribute) satisfies value.
func MatchingXPathValue(expr string, value *Pattern) *Pattern {
	p := &Pattern{kind: KindMatchesXPath, expression: expr, value: value}
	p.expected = queryRendering(expr, value)

	elemPath := expr
	if i := strings.LastIndex(expr, "/@"); i >= 0 {
		elemPath, p.xpathAttr = expr[:i], expr[i+2:]
		if elemPath == "" {
			elemPath = "."
		}
	}
	path, err := etree.CompilePath(elemPath)
	if err != nil {
		p.err = &ConfigError{Kind: KindMatchesXPath, Expression: expr, Err: err}
		return p
	}
	p.xpath = path
	if value != nil && value.err != nil {
		p.err = value.err
	}
	return p
}

// MatchesJSONSchema matches JSON documents valid against schema.
func MatchesJSONSchema(schema string) *Pattern {
	p := &Pattern{kind: KindMatchesJSONSchema, expression: schema, expected: schema}
	if doc, err := structured.ParseJSON(schema); err == nil {
		p.expected = structured.PrettyJSON(doc)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", strings.NewReader(schema)); err != nil {
		p.err = &ConfigError{Kind: KindMatchesJSONSchema, Expression: schema, Err: err}
		return p
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		p.err = &ConfigError{Kind: KindMatchesJSONSchema, Expression: schema, Err: err}
		return p
	}
	p.schema = compiled
	return p
}

func queryRendering(expr string, value *Pattern) string {
	if value == nil {
		return expr
	}
	return expr + " " + value.kind.String() + " " + value.expected
}

// Evaluate matches the pattern against an observed value. It never fails: a
// misconfigured pattern or an unparseable observed document is reported as a
// non-match.
func (p *Pattern) Evaluate(v Value) MatchResult {
	if p.err != nil {
		return noMatch(p.expected, v.s)
	}
	if p.kind == KindAbsent {
		if v.present {
			return noMatch(p.expected, v.s)
		}
		return exactMatch(p.expected, "")
	}
	if !v.present {
		return noMatch(p.expected, "")
	}

	switch p.kind {
	case KindEqualTo:
		return p.evaluateEqualTo(v.s)
	case KindContains:
		return verdict(strings.Contains(v.s, p.expression), p.expected, v.s)
	case KindMatches:
		return verdict(p.re.MatchString(v.s), p.expected, v.s)
	case KindDoesNotMatch:
		return verdict(!p.re.MatchString(v.s), p.expected, v.s)
	case KindEqualToJSON:
		return p.evaluateJSON(v.s)
	case KindEqualToXML:
		return p.evaluateXML(v.s)
	case KindMatchesJSONPath:
		return p.evaluateJSONPath(v.s)
	case KindMatchesXPath:
		return p.evaluateXPath(v.s)
	case KindMatchesJSONSchema:
		return p.evaluateJSONSchema(v.s)
	default:
		return noMatch(p.expected, v.s)
	}
}

func (p *Pattern) evaluateEqualTo(actual string) MatchResult {
	if p.ignoreCase {
		fold := cases.Fold()
		return verdict(fold.String(actual) == fold.String(p.expression), p.expected, actual)
	}
	return verdict(actual == p.expression, p.expected, actual)
}

func (p *Pattern) evaluateJSON(actual string) MatchResult {
	doc, err := structured.ParseJSON(actual)
	if err != nil {
		return noMatch(p.expected, actual)
	}
	cmp := structured.CompareJSON(p.jsonExpected, doc, p.jsonOptions)
	return MatchResult{
		Matched:  cmp.Equal,
		Distance: cmp.Distance,
		Expected: p.expected,
		Actual:   structured.PrettyJSON(structured.ReduceJSON(p.jsonExpected, doc, p.jsonOptions)),
	}
}

func (p *Pattern) evaluateXML(actual string) MatchResult {
	root, err := structured.ParseXML(actual)
	if err != nil {
		return noMatch(p.expected, actual)
	}
	cmp := structured.CompareXML(p.xmlExpected, root)
	return MatchResult{
		Matched:  cmp.Equal,
		Distance: cmp.Distance,
		Expected: p.expected,
		Actual:   structured.PrettyXML(root),
	}
}

func (p *Pattern) evaluateJSONSchema(actual string) MatchResult {
	doc, err := structured.ParseJSON(actual)
	if err != nil {
		return noMatch(p.expected, actual)
	}
	if err := p.schema.Validate(doc); err != nil {
		return noMatch(p.expected, structured.PrettyJSON(doc))
	}
	return exactMatch(p.expected, structured.PrettyJSON(doc))
}

// matchesAny reports whether any selected node satisfies the nested matcher,
// or whether anything was selected at all when there is none.
func (p *Pattern) matchesAny(nodes []string) bool {
	if p.value == nil {
		return len(nodes) > 0
	}
	for _, n := range nodes {
		if p.value.Evaluate(ValueOf(n)).Matched {
			return true
		}
	}
	return false
}
