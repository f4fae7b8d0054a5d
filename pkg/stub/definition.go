package stub

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/getmockd/reqdiff/internal/matching"
	"github.com/getmockd/reqdiff/internal/structured"
)

// ErrInvalidDefinition is matched by every ValidationError.
var ErrInvalidDefinition = errors.New("invalid stub definition")

// ValidationError represents a definition failure with context.
type ValidationError struct {
	StubID  string
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.StubID != "" {
		return fmt.Sprintf("stub %s: validation error on %s: %s", e.StubID, e.Field, msg)
	}
	return fmt.Sprintf("validation error on %s: %s", e.Field, msg)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidDefinition.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidDefinition }

// Definition is the file form of a stub.
type Definition struct {
	ID       string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Priority int        `json:"priority,omitempty" yaml:"priority,omitempty"`
	Enabled  *bool      `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Request  RequestDef `json:"request" yaml:"request"`
}

// RequestDef describes the expected request. At most one URL field may be
// set; none means any URL.
type RequestDef struct {
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	URLPattern      string `json:"urlPattern,omitempty" yaml:"urlPattern,omitempty"`
	URLPath         string `json:"urlPath,omitempty" yaml:"urlPath,omitempty"`
	URLPathPattern  string `json:"urlPathPattern,omitempty" yaml:"urlPathPattern,omitempty"`
	URLPathTemplate string `json:"urlPathTemplate,omitempty" yaml:"urlPathTemplate,omitempty"`

	// Named clauses are applied in name order.
	QueryParameters map[string]PatternDef `json:"queryParameters,omitempty" yaml:"queryParameters,omitempty"`
	Headers         map[string]PatternDef `json:"headers,omitempty" yaml:"headers,omitempty"`
	Cookies         map[string]PatternDef `json:"cookies,omitempty" yaml:"cookies,omitempty"`

	BodyPatterns []PatternDef `json:"bodyPatterns,omitempty" yaml:"bodyPatterns,omitempty"`
}

// PatternDef is the file form of a single attribute pattern. Exactly one
// operator field must be set.
type PatternDef struct {
	EqualTo         *string `json:"equalTo,omitempty" yaml:"equalTo,omitempty"`
	CaseInsensitive bool    `json:"caseInsensitive,omitempty" yaml:"caseInsensitive,omitempty"`

	Matches      *string `json:"matches,omitempty" yaml:"matches,omitempty"`
	DoesNotMatch *string `json:"doesNotMatch,omitempty" yaml:"doesNotMatch,omitempty"`
	Contains     *string `json:"contains,omitempty" yaml:"contains,omitempty"`

	// EqualToJSON is a JSON document given either as a string or inline.
	EqualToJSON         any  `json:"equalToJson,omitempty" yaml:"equalToJson,omitempty"`
	IgnoreArrayOrder    bool `json:"ignoreArrayOrder,omitempty" yaml:"ignoreArrayOrder,omitempty"`
	IgnoreExtraElements bool `json:"ignoreExtraElements,omitempty" yaml:"ignoreExtraElements,omitempty"`

	EqualToXML *string `json:"equalToXml,omitempty" yaml:"equalToXml,omitempty"`

	MatchesJSONPath *string `json:"matchesJsonPath,omitempty" yaml:"matchesJsonPath,omitempty"`
	MatchesXPath    *string `json:"matchesXPath,omitempty" yaml:"matchesXPath,omitempty"`
	// Value constrains the nodes a JSONPath or XPath expression selects.
	Value *PatternDef `json:"value,omitempty" yaml:"value,omitempty"`

	// MatchesJSONSchema is a JSON schema given either as a string or inline.
	MatchesJSONSchema any `json:"matchesJsonSchema,omitempty" yaml:"matchesJsonSchema,omitempty"`

	Absent bool `json:"absent,omitempty" yaml:"absent,omitempty"`
}

// operators lists the operator fields that are set.
func (d *PatternDef) operators() []string {
	var ops []string
	add := func(set bool, name string) {
		if set {
			ops = append(ops, name)
		}
	}
	add(d.EqualTo != nil, "equalTo")
	add(d.Matches != nil, "matches")
	add(d.DoesNotMatch != nil, "doesNotMatch")
	add(d.Contains != nil, "contains")
	add(d.EqualToJSON != nil, "equalToJson")
	add(d.EqualToXML != nil, "equalToXml")
	add(d.MatchesJSONPath != nil, "matchesJsonPath")
	add(d.MatchesXPath != nil, "matchesXPath")
	add(d.MatchesJSONSchema != nil, "matchesJsonSchema")
	add(d.Absent, "absent")
	return ops
}

// Pattern builds the matching.Pattern the definition describes. Configuration
// errors of the expression itself are carried by the returned pattern and
// surface from RequestPatternBuilder.Build.
func (d *PatternDef) Pattern() (*matching.Pattern, error) {
	ops := d.operators()
	switch len(ops) {
	case 0:
		return nil, errors.New("no match operator set")
	case 1:
	default:
		return nil, fmt.Errorf("multiple match operators set: %s", strings.Join(ops, ", "))
	}
	if d.Value != nil && d.MatchesJSONPath == nil && d.MatchesXPath == nil {
		return nil, errors.New("value is only allowed with matchesJsonPath or matchesXPath")
	}

	switch {
	case d.EqualTo != nil:
		if d.CaseInsensitive {
			return matching.EqualToIgnoreCase(*d.EqualTo), nil
		}
		return matching.EqualTo(*d.EqualTo), nil
	case d.Matches != nil:
		return matching.Matching(*d.Matches), nil
	case d.DoesNotMatch != nil:
		return matching.DoesNotMatch(*d.DoesNotMatch), nil
	case d.Contains != nil:
		return matching.Contains(*d.Contains), nil
	case d.EqualToJSON != nil:
		doc, err := documentText(d.EqualToJSON)
		if err != nil {
			return nil, fmt.Errorf("equalToJson: %w", err)
		}
		return matching.EqualToJSON(doc, structured.JSONOptions{
			IgnoreArrayOrder:    d.IgnoreArrayOrder,
			IgnoreExtraElements: d.IgnoreExtraElements,
		}), nil
	case d.EqualToXML != nil:
		return matching.EqualToXML(*d.EqualToXML), nil
	case d.MatchesJSONPath != nil:
		value, err := d.valuePattern()
		if err != nil {
			return nil, err
		}
		return matching.MatchingJSONPathValue(*d.MatchesJSONPath, value), nil
	case d.MatchesXPath != nil:
		value, err := d.valuePattern()
		if err != nil {
			return nil, err
		}
		return matching.MatchingXPathValue(*d.MatchesXPath, value), nil
	case d.MatchesJSONSchema != nil:
		doc, err := documentText(d.MatchesJSONSchema)
		if err != nil {
			return nil, fmt.Errorf("matchesJsonSchema: %w", err)
		}
		return matching.MatchesJSONSchema(doc), nil
	default:
		return matching.Absent(), nil
	}
}

func (d *PatternDef) valuePattern() (*matching.Pattern, error) {
	if d.Value == nil {
		return nil, nil
	}
	p, err := d.Value.Pattern()
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return p, nil
}

// documentText accepts a document given as a string or as an inline value
// and returns its JSON text.
func documentText(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// URLMatcher builds the URL matcher.
func (r *RequestDef) URLMatcher() (*matching.URLPattern, error) {
	type choice struct {
		field string
		value string
		build func(string) *matching.URLPattern
	}
	choices := []choice{
		{"url", r.URL, matching.URLEqualTo},
		{"urlPattern", r.URLPattern, matching.URLMatching},
		{"urlPath", r.URLPath, matching.URLPathEqualTo},
		{"urlPathPattern", r.URLPathPattern, matching.URLPathMatching},
		{"urlPathTemplate", r.URLPathTemplate, matching.URLPathTemplate},
	}

	var set []choice
	for _, c := range choices {
		if c.value != "" {
			set = append(set, c)
		}
	}
	switch len(set) {
	case 0:
		return matching.AnyURL(), nil
	case 1:
		return set[0].build(set[0].value), nil
	default:
		names := make([]string, len(set))
		for i, c := range set {
			names[i] = c.field
		}
		return nil, fmt.Errorf("multiple URL matchers set: %s", strings.Join(names, ", "))
	}
}

// Build validates the definition and returns its request pattern. Every
// problem is reported, joined, and each matches ErrInvalidDefinition.
func (d *Definition) Build() (*matching.RequestPattern, error) {
	var errs []error
	fail := func(field string, err error) {
		errs = append(errs, &ValidationError{StubID: d.ID, Field: field, Err: err})
	}

	url, err := d.Request.URLMatcher()
	if err != nil {
		fail("request.url", err)
		url = matching.AnyURL()
	}

	b := matching.NewRequestPattern(matching.ParseMethod(d.Request.Method), url)
	for _, name := range sortedKeys(d.Request.QueryParameters) {
		def := d.Request.QueryParameters[name]
		if p, err := def.Pattern(); err != nil {
			fail("request.queryParameters."+name, err)
		} else {
			b.WithQueryParam(name, p)
		}
	}
	for _, name := range sortedKeys(d.Request.Headers) {
		def := d.Request.Headers[name]
		if p, err := def.Pattern(); err != nil {
			fail("request.headers."+name, err)
		} else {
			b.WithHeader(name, p)
		}
	}
	for _, name := range sortedKeys(d.Request.Cookies) {
		def := d.Request.Cookies[name]
		if p, err := def.Pattern(); err != nil {
			fail("request.cookies."+name, err)
		} else {
			b.WithCookie(name, p)
		}
	}
	for i := range d.Request.BodyPatterns {
		if p, err := d.Request.BodyPatterns[i].Pattern(); err != nil {
			fail(fmt.Sprintf("request.bodyPatterns[%d]", i), err)
		} else {
			b.WithRequestBody(p)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	p, err := b.Build()
	if err != nil {
		return nil, &ValidationError{StubID: d.ID, Field: "request", Err: err}
	}
	return p, nil
}

func sortedKeys(m map[string]PatternDef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
