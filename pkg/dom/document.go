package dom

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a live HTML document.
type Document struct {
	mu     sync.RWMutex
	root   *html.Node
	state  map[*html.Node]*liveState
	active *html.Node
}

// liveState holds user-modified form state for one element.
// A nil field means "not modified, read the attribute".
type liveState struct {
	value    *string
	checked  *bool
	selected *bool
}

// New wraps an already parsed tree.
func New(root *html.Node) *Document {
	return &Document{
		root:  root,
		state: make(map[*html.Node]*liveState),
	}
}

// Parse parses a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// ParseString parses a full HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Read runs fn with the document read-locked.
func (d *Document) Read(fn func(root *html.Node)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.root)
}

// Write runs fn with the document write-locked.
func (d *Document) Write(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// Root returns the document node. Callers must hold the lock to inspect it.
func (d *Document) Root() *html.Node {
	return d.root
}

// Replace swaps in a new tree and drops all live state.
// Used for full navigations, which abandon the current page.
func (d *Document) Replace(root *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root = root
	d.state = make(map[*html.Node]*liveState)
	d.active = nil
}

// Focus records n as the focused element.
func (d *Document) Focus(n *html.Node) {
	d.active = n
}

// ActiveElement returns the focused element, or nil.
func (d *Document) ActiveElement() *html.Node {
	if d.active == nil || !d.contains(d.active) {
		return nil
	}
	return d.active
}

func (d *Document) contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Forget drops live state for n and its descendants.
func (d *Document) Forget(n *html.Node) {
	walk(n, func(c *html.Node) bool {
		delete(d.state, c)
		if c == d.active {
			d.active = nil
		}
		return true
	})
}

// Body returns the body element, or nil.
func (d *Document) Body() *html.Node {
	n, _ := Query(d.root, "body")
	return n
}

// Title returns the text of head>title.
func (d *Document) Title() string {
	n, _ := Query(d.root, "head > title")
	if n == nil {
		return ""
	}
	return strings.TrimSpace(Text(n))
}

// SetTitle replaces the text of head>title, creating it when missing.
func (d *Document) SetTitle(title string) {
	n, _ := Query(d.root, "head > title")
	if n == nil {
		head, _ := Query(d.root, "head")
		if head == nil {
			return
		}
		n = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		head.AppendChild(n)
	}
	SetText(n, title)
}

// SetInnerHTML replaces the children of n with parsed markup.
func (d *Document) SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := ParseFragment(n, markup)
	if err != nil {
		return err
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		d.Forget(c)
		n.RemoveChild(c)
		c = next
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

// ParseFragment parses markup in the context of element ctx.
func ParseFragment(ctx *html.Node, markup string) ([]*html.Node, error) {
	if ctx == nil || ctx.Type != html.ElementNode {
		ctx = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	return html.ParseFragment(strings.NewReader(markup), ctx)
}

// OuterHTML renders n including itself.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// walk visits n and its descendants in document order.
// Returning false from fn skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
