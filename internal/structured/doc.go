// Package structured compares and canonically renders structured request bodies.
//
// It backs the JSON and XML attribute patterns in the matching package and the
// body sections of the diff renderer:
//
//   - JSON: parsing with number literals preserved, structural comparison with
//     optional array-order and extra-element leniency, reduction of the observed
//     document to the structure the expected document constrains, and 2-space
//     pretty-printing.
//   - XML: parsing via etree, structural comparison ignoring insignificant
//     whitespace, and 2-space pretty-printing with self-closing empty elements.
//
// Every function is pure. Callers may use them concurrently without locking.
package structured

// Formatting constants shared by every canonical renderer.
const (
	// Indent is the per-level indentation used by PrettyJSON and PrettyXML.
	Indent = "  "

	// LineSeparator terminates rendered lines.
	LineSeparator = "\n"
)

// Comparison is the outcome of a structural comparison.
type Comparison struct {
	// Equal reports whether the documents are structurally equal under the
	// comparison options.
	Equal bool

	// Distance is the share of compared nodes that disagree, in [0,1].
	Distance float64
}

func newComparison(miss, total int) Comparison {
	if total <= 0 {
		total = 1
	}
	if miss > total {
		miss = total
	}
	return Comparison{Equal: miss == 0, Distance: float64(miss) / float64(total)}
}
