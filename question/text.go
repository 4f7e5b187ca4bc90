package question

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms end a line of text, like the browser's innerText does.
var blockAtoms = map[atom.Atom]struct{}{
	atom.P: {}, atom.Div: {}, atom.Pre: {}, atom.Li: {}, atom.Ul: {}, atom.Ol: {},
	atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {},
	atom.Table: {}, atom.Tr: {}, atom.Blockquote: {}, atom.Section: {},
}

// innerText approximates HTMLElement.innerText for the given nodes.
func innerText(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeText(&b, n)
	}
	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript:
			return
		case atom.Br:
			b.WriteString("\n")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}

	if n.Type == html.ElementNode {
		if _, ok := blockAtoms[n.DataAtom]; ok {
			b.WriteString("\n")
		}
	}
}
