package structured

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
)

var errNoRootElement = errors.New("XML document has no root element")

// xmlWriteSettings escapes &, < and > in text and &, < and " in attribute
// values.
var xmlWriteSettings = &etree.WriteSettings{CanonicalText: true, CanonicalAttrVal: true}

// ParseXML parses s and returns its root element.
func ParseXML(s string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, errNoRootElement
	}
	return root, nil
}

// PrettyXML renders an element tree with 2-space indentation. Empty elements
// are self-closing, attributes keep their declaration order, and the root's
// closing tag is followed by a line separator.
func PrettyXML(root *etree.Element) string {
	if root == nil {
		return ""
	}
	var sb strings.Builder
	writeXMLElement(&sb, root, 0)
	return sb.String()
}

// CompareXML structurally compares element names, attributes, text content and
// child elements. Whitespace-only text, comments and processing instructions
// are insignificant.
func CompareXML(expected, actual *etree.Element) Comparison {
	if expected == nil || actual == nil {
		return newComparison(1, 1)
	}
	miss, total := compareXMLElements(expected, actual)
	return newComparison(miss, total)
}

// ReduceXMLText parses both documents and returns their canonical renderings.
// A side that fails to parse is returned verbatim.
func ReduceXMLText(expected, observed string) (string, string) {
	e, err := ParseXML(expected)
	if err != nil {
		return expected, observed
	}
	a, err := ParseXML(observed)
	if err != nil {
		return PrettyXML(e), observed
	}
	return PrettyXML(e), PrettyXML(a)
}

func writeXMLElement(sb *strings.Builder, e *etree.Element, depth int) {
	indent := strings.Repeat(Indent, depth)
	tag := e.FullTag()

	sb.WriteString(indent)
	sb.WriteString("<")
	sb.WriteString(tag)
	for _, a := range e.Attr {
		sb.WriteString(" ")
		a.WriteTo(sb, xmlWriteSettings)
	}

	children := e.ChildElements()
	text := xmlText(e)
	switch {
	case len(children) == 0 && text == "":
		sb.WriteString("/>")
		sb.WriteString(LineSeparator)
	case len(children) == 0:
		sb.WriteString(">")
		etree.NewText(text).WriteTo(sb, xmlWriteSettings)
		sb.WriteString("</" + tag + ">")
		sb.WriteString(LineSeparator)
	default:
		sb.WriteString(">")
		sb.WriteString(LineSeparator)
		if text != "" {
			sb.WriteString(indent + Indent)
			etree.NewText(text).WriteTo(sb, xmlWriteSettings)
			sb.WriteString(LineSeparator)
		}
		for _, child := range children {
			writeXMLElement(sb, child, depth+1)
		}
		sb.WriteString(indent)
		sb.WriteString("</" + tag + ">")
		sb.WriteString(LineSeparator)
	}
}

func compareXMLElements(e, a *etree.Element) (miss, total int) {
	total = 1
	if e.Tag != a.Tag || e.NamespaceURI() != a.NamespaceURI() {
		n := countXMLNodes(e)
		return n, n
	}

	ea, aa := xmlAttrs(e), xmlAttrs(a)
	for k, v := range ea {
		total++
		if av, ok := aa[k]; !ok || av != v {
			miss++
		}
	}
	for k := range aa {
		if _, ok := ea[k]; !ok {
			total++
			miss++
		}
	}

	et, at := xmlText(e), xmlText(a)
	if et != "" || at != "" {
		total++
		if et != at {
			miss++
		}
	}

	ec, ac := e.ChildElements(), a.ChildElements()
	for i, child := range ec {
		if i >= len(ac) {
			n := countXMLNodes(child)
			miss += n
			total += n
			continue
		}
		m, t := compareXMLElements(child, ac[i])
		miss += m
		total += t
	}
	for _, extra := range ac[min(len(ec), len(ac)):] {
		n := countXMLNodes(extra)
		miss += n
		total += n
	}
	return miss, total
}

func countXMLNodes(e *etree.Element) int {
	n := 1 + len(e.Attr)
	if xmlText(e) != "" {
		n++
	}
	for _, child := range e.ChildElements() {
		n += countXMLNodes(child)
	}
	return n
}

// xmlAttrs keys attributes by namespace URI and local name, skipping
// namespace declarations.
func xmlAttrs(e *etree.Element) map[string]string {
	attrs := make(map[string]string, len(e.Attr))
	for _, a := range e.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		attrs[a.NamespaceURI()+"|"+a.Key] = a.Value
	}
	return attrs
}

// xmlText joins the element's own non-whitespace character data.
func xmlText(e *etree.Element) string {
	var parts []string
	for _, tok := range e.Child {
		cd, ok := tok.(*etree.CharData)
		if !ok {
			continue
		}
		if s := strings.TrimSpace(cd.Data); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
