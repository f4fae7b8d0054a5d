package structured

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

var errTrailingJSON = errors.New("unexpected data after top-level JSON value")

// JSONOptions controls how leniently two JSON documents are compared.
type JSONOptions struct {
	// IgnoreArrayOrder treats arrays as multisets.
	IgnoreArrayOrder bool `json:"ignoreArrayOrder,omitempty" yaml:"ignoreArrayOrder,omitempty"`

	// IgnoreExtraElements allows the observed document to carry object keys
	// and trailing array elements the expected document does not mention.
	// When set, ReduceJSON prunes that extra structure from the observed side.
	IgnoreExtraElements bool `json:"ignoreExtraElements,omitempty" yaml:"ignoreExtraElements,omitempty"`
}

// ParseJSON decodes a single JSON document. Numbers are kept as json.Number so
// their source literal survives pretty-printing.
func ParseJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingJSON
	}
	return v, nil
}

// PrettyJSON renders v with 2-space indentation, one key per line and sorted
// object keys. The result has no trailing line separator.
func PrettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// CompareJSON structurally compares an expected document with an observed one.
func CompareJSON(expected, actual any, opts JSONOptions) Comparison {
	c := jsonComparer{opts: opts}
	miss, total := c.compare(expected, actual)
	return newComparison(miss, total)
}

// ReduceJSON returns the observed document restricted to the structure the
// expected document constrains. Without IgnoreExtraElements the observed
// document is returned unchanged, because its extra structure is itself part
// of the mismatch.
func ReduceJSON(expected, actual any, opts JSONOptions) any {
	if !opts.IgnoreExtraElements {
		return actual
	}
	return reduceJSON(expected, actual, opts)
}

// ReduceJSONText parses both documents and returns their canonical renderings,
// with the observed side reduced by ReduceJSON. A side that fails to parse is
// returned verbatim.
func ReduceJSONText(expected, observed string, opts JSONOptions) (string, string) {
	e, err := ParseJSON(expected)
	if err != nil {
		return expected, observed
	}
	a, err := ParseJSON(observed)
	if err != nil {
		return PrettyJSON(e), observed
	}
	return PrettyJSON(e), PrettyJSON(ReduceJSON(e, a, opts))
}

func reduceJSON(e, a any, opts JSONOptions) any {
	switch ev := e.(type) {
	case map[string]any:
		av, ok := a.(map[string]any)
		if !ok {
			return a
		}
		out := make(map[string]any, len(av))
		for k, avv := range av {
			if evv, ok := ev[k]; ok {
				out[k] = reduceJSON(evv, avv, opts)
			}
		}
		return out
	case []any:
		av, ok := a.([]any)
		if !ok || opts.IgnoreArrayOrder {
			return a
		}
		out := make([]any, 0, len(ev))
		for i := 0; i < len(av) && i < len(ev); i++ {
			out = append(out, reduceJSON(ev[i], av[i], opts))
		}
		return out
	default:
		return a
	}
}

type jsonComparer struct {
	opts JSONOptions
}

// compare returns the number of disagreeing nodes and the number of nodes
// taken into account.
func (c jsonComparer) compare(e, a any) (miss, total int) {
	switch ev := e.(type) {
	case map[string]any:
		av, ok := a.(map[string]any)
		if !ok {
			n := countJSONNodes(e)
			return n, n
		}
		if len(ev) == 0 {
			total++
		}
		for k, evv := range ev {
			avv, ok := av[k]
			if !ok {
				n := countJSONNodes(evv)
				miss += n
				total += n
				continue
			}
			m, t := c.compare(evv, avv)
			miss += m
			total += t
		}
		if !c.opts.IgnoreExtraElements {
			for k, avv := range av {
				if _, ok := ev[k]; !ok {
					n := countJSONNodes(avv)
					miss += n
					total += n
				}
			}
		}
		return miss, total
	case []any:
		av, ok := a.([]any)
		if !ok {
			n := countJSONNodes(e)
			return n, n
		}
		if c.opts.IgnoreArrayOrder {
			return c.compareUnordered(ev, av)
		}
		if len(ev) == 0 {
			total++
		}
		for i, evv := range ev {
			if i >= len(av) {
				n := countJSONNodes(evv)
				miss += n
				total += n
				continue
			}
			m, t := c.compare(evv, av[i])
			miss += m
			total += t
		}
		if !c.opts.IgnoreExtraElements {
			for _, extra := range av[min(len(ev), len(av)):] {
				n := countJSONNodes(extra)
				miss += n
				total += n
			}
		}
		return miss, total
	default:
		if scalarsEqual(e, a) {
			return 0, 1
		}
		return 1, 1
	}
}

func (c jsonComparer) equal(e, a any) bool {
	miss, _ := c.compare(e, a)
	return miss == 0
}

// compareUnordered pairs every expected element with a distinct observed
// element. Pairing is a maximum bipartite matching over the element
// equality matrix; expected elements left unpaired count as disagreeing.
func (c jsonComparer) compareUnordered(ev, av []any) (miss, total int) {
	for _, e := range ev {
		total += countJSONNodes(e)
	}
	if len(ev) == 0 {
		total++
	}

	eq := make([][]int, len(ev))
	for i, e := range ev {
		for j, a := range av {
			if c.equal(e, a) {
				eq[i] = append(eq[i], j)
			}
		}
	}

	pairedWith := make([]int, len(av))
	for j := range pairedWith {
		pairedWith[j] = -1
	}
	for i, e := range ev {
		seen := make([]bool, len(av))
		if !augment(eq, i, seen, pairedWith) {
			miss += countJSONNodes(e)
		}
	}

	if !c.opts.IgnoreExtraElements {
		for j, a := range av {
			if pairedWith[j] < 0 {
				n := countJSONNodes(a)
				miss += n
				total += n
			}
		}
	}
	return miss, total
}

// augment looks for an augmenting path from expected element i (Kuhn's
// algorithm). pairedWith maps each observed element to its expected partner.
func augment(eq [][]int, i int, seen []bool, pairedWith []int) bool {
	for _, j := range eq[i] {
		if seen[j] {
			continue
		}
		seen[j] = true
		if pairedWith[j] < 0 || augment(eq, pairedWith[j], seen, pairedWith) {
			pairedWith[j] = i
			return true
		}
	}
	return false
}

func countJSONNodes(v any) int {
	n := 0
	switch vv := v.(type) {
	case map[string]any:
		for _, child := range vv {
			n += countJSONNodes(child)
		}
	case []any:
		for _, child := range vv {
			n += countJSONNodes(child)
		}
	default:
		return 1
	}
	if n == 0 {
		return 1
	}
	return n
}

func scalarsEqual(e, a any) bool {
	if e == nil || a == nil {
		return e == nil && a == nil
	}
	if el, ok := numberLiteral(e); ok {
		al, ok := numberLiteral(a)
		return ok && numbersEqual(el, al)
	}
	switch ev := e.(type) {
	case string:
		as, ok := a.(string)
		return ok && as == ev
	case bool:
		ab, ok := a.(bool)
		return ok && ab == ev
	}
	return false
}

// numberLiteral returns the decimal literal of the number representations
// produced by encoding/json.
func numberLiteral(v any) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	default:
		return "", false
	}
}

// numbersEqual compares two decimal literals by exact value, so 1, 1.0 and
// 10e-1 are equal while integers beyond float64 precision stay distinct.
func numbersEqual(a, b string) bool {
	if a == b {
		return true
	}
	an, ok := parseDecimal(a)
	if !ok {
		return false
	}
	bn, ok := parseDecimal(b)
	return ok && an == bn
}

// decimal is a number normalised to digits × 10^exp with no leading or
// trailing zeros in digits. Zero is {digits: "0"}.
type decimal struct {
	neg    bool
	digits string
	exp    int
}

func parseDecimal(lit string) (decimal, bool) {
	var d decimal
	if strings.HasPrefix(lit, "-") {
		d.neg = true
		lit = lit[1:]
	}
	mantissa, expPart, hasExp := strings.Cut(strings.ToLower(lit), "e")
	if hasExp {
		exp, err := strconv.Atoi(expPart)
		if err != nil {
			return decimal{}, false
		}
		d.exp = exp
	}
	intPart, frac, _ := strings.Cut(mantissa, ".")
	digits := intPart + frac
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return decimal{}, false
	}
	d.exp -= len(frac)

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return decimal{digits: "0"}, true
	}
	trimmed := strings.TrimRight(digits, "0")
	d.exp += len(digits) - len(trimmed)
	d.digits = trimmed
	return d, true
}
