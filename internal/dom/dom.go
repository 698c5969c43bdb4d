// Package dom provides a tolerant document model for rule evaluation.
// Markup is fragment-parsed with WHATWG recovery; the resulting element
// tree preserves attribute order so that violation snippets serialize
// stably across repeated parse/render round trips.
package dom

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrEmptyDocument is returned when the input contains nothing parseable.
// Callers must treat it as a failed scan, not as a clean document.
var ErrEmptyDocument = eris.New("dom: empty document")

// Attr is a single attribute. Order within an element is the order the
// parser observed.
type Attr struct {
	Key string
	Val string
}

// Element is one node of the document tree. Text nodes are represented as
// elements with an empty Tag and a non-empty Text.
type Element struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Parent   *Element
	Children []*Element
}

// IsText reports whether e is a text node.
func (e *Element) IsText() bool { return e.Tag == "" }

// Attr returns the value of the named attribute and whether it is present.
// Lookup is case-insensitive; the parser lower-cases names already.
func (e *Element) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.Attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute value, or def when absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// HasAttr reports whether the named attribute is present, even if empty.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Closest walks up the parent chain and returns the nearest ancestor
// (including e itself) with the given tag, or nil.
func (e *Element) Closest(tag string) *Element {
	tag = strings.ToLower(tag)
	for cur := e; cur != nil; cur = cur.Parent {
		if cur.Tag == tag {
			return cur
		}
	}
	return nil
}

// Text content of script and style elements is never visible.
func hiddenTag(tag string) bool {
	return tag == "script" || tag == "style" || tag == "noscript" || tag == "template"
}

// VisibleText returns the concatenated text of e's subtree, excluding
// script/style content. Whitespace is preserved as parsed; callers collapse
// it as needed.
func (e *Element) VisibleText() string {
	var sb strings.Builder
	var walk func(*Element)
	walk = func(n *Element) {
		if n.IsText() {
			sb.WriteString(n.Text)
			return
		}
		if hiddenTag(n.Tag) {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(e)
	return sb.String()
}

// Document is the parsed tree for one content item. It is built fresh per
// scan and discarded after rule execution.
type Document struct {
	root *Element
	byID map[string]*Element
}

// Parse builds a Document from raw markup. Malformed markup is recovered
// per WHATWG rules (implicit closes, last-attribute-wins). Parse fails only
// when the input is empty or yields no nodes at all; that failure must be
// surfaced so a broken scan is never mistaken for a clean one.
func Parse(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDocument
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), body)
	if err != nil {
		return nil, eris.Wrap(err, "dom: parse fragment")
	}

	root := &Element{Tag: "#root"}
	for _, n := range nodes {
		if child := convert(n, root); child != nil {
			root.Children = append(root.Children, child)
		}
	}
	if len(root.Children) == 0 {
		return nil, ErrEmptyDocument
	}

	doc := &Document{root: root, byID: make(map[string]*Element)}
	doc.Walk(func(e *Element) {
		if id, ok := e.Attr("id"); ok && id != "" {
			if _, dup := doc.byID[id]; !dup {
				doc.byID[id] = e
			}
		}
	})
	return doc, nil
}

func convert(n *html.Node, parent *Element) *Element {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return &Element{Text: n.Data, Parent: parent}
	case html.ElementNode:
		e := &Element{Tag: strings.ToLower(n.Data), Parent: parent}
		for _, a := range n.Attr {
			e.Attrs = append(e.Attrs, Attr{Key: strings.ToLower(a.Key), Val: a.Val})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c, e); child != nil {
				e.Children = append(e.Children, child)
			}
		}
		return e
	default:
		// Comments, doctypes and raw nodes carry no rule-relevant content.
		return nil
	}
}

// Root returns the synthetic root element containing all top-level nodes.
func (d *Document) Root() *Element { return d.root }

// Walk visits every element node in document order.
func (d *Document) Walk(fn func(*Element)) {
	var walk func(*Element)
	walk = func(e *Element) {
		if !e.IsText() && e != d.root {
			fn(e)
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	walk(d.root)
}

// ElementByID returns the first element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element {
	return d.byID[id]
}

// WordCount returns the number of whitespace-separated words in the
// document's visible text.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.root.VisibleText()))
}
