package matching

import (
	"strings"

	"github.com/beevik/etree"
)

// evaluateXPath selects elements (or attributes) from the observed XML
// document. The actual rendering is always the raw observed body.
func (p *Pattern) evaluateXPath(body string) MatchResult {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil || doc.Root() == nil {
		return noMatch(p.expected, body)
	}
	return verdict(p.matchesAny(selectXPath(doc, p.xpath, p.xpathAttr)), p.expected, body)
}

// selectXPath returns the trimmed text of every element path selects, or the
// value of attr on those elements when attr is set.
func selectXPath(doc *etree.Document, path etree.Path, attr string) []string {
	var nodes []string
	for _, elem := range doc.FindElementsPath(path) {
		if attr == "" {
			nodes = append(nodes, strings.TrimSpace(elem.Text()))
			continue
		}
		if a := elem.SelectAttr(attr); a != nil {
			nodes = append(nodes, a.Value)
		}
	}
	return nodes
}
