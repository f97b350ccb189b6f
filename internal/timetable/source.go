package timetable

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DocumentSource is the markup capability the extractor depends on. Any
// parser that can locate a title and an id-addressed table can back it.
type DocumentSource interface {
	// FindTitle returns the text of the first title-level element, or "".
	FindTitle() string
	// FindTable locates the table with the given id.
	FindTable(id string) (TableSource, bool)
}

// TableSource exposes the body rows of one table.
type TableSource interface {
	// Rows returns the number of body rows.
	Rows() int
	// Cells returns the text content of the data cells of row i.
	Cells(i int) []string
}

// htmlSource implements DocumentSource over a parsed HTML tree.
type htmlSource struct {
	root *html.Node
}

// NewHTMLSource parses an HTML document. The HTML5 parser is lenient, so
// only read failures surface as errors.
func NewHTMLSource(r io.Reader) (DocumentSource, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &htmlSource{root: root}, nil
}

func (s *htmlSource) FindTitle() string {
	n := findFirst(s.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.H1
	})
	if n == nil {
		return ""
	}
	return textContent(n)
}

func (s *htmlSource) FindTable(id string) (TableSource, bool) {
	n := findFirst(s.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	if n == nil {
		return nil, false
	}

	var rows []*html.Node
	seen := make(map[*html.Node]bool)
	walk(n, func(body *html.Node) {
		if body.Type != html.ElementNode || body.DataAtom != atom.Tbody {
			return
		}
		walk(body, func(tr *html.Node) {
			if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr && !seen[tr] {
				seen[tr] = true
				rows = append(rows, tr)
			}
		})
	})
	return &htmlTable{rows: rows}, true
}

type htmlTable struct {
	rows []*html.Node
}

func (t *htmlTable) Rows() int { return len(t.rows) }

func (t *htmlTable) Cells(i int) []string {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	var cells []string
	for c := t.rows[i].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Td {
			cells = append(cells, textContent(c))
		}
	}
	return cells
}

// walk visits n and all of its descendants in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates all descendant text nodes, like DOM textContent.
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}
