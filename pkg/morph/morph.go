package morph

import (
	"golang.org/x/net/html"
)

// Action tells Morph what to do with a matched pair.
type Action uint8

const (
	Merge Action = iota // patch the old node from the new one
	Skip                // leave the old subtree as is
)

// String returns the string representation of the Action.
func (a Action) String() string {
	switch a {
	case Merge:
		return "Merge"
	case Skip:
		return "Skip"
	default:
		return "Unknown"
	}
}

// Update is a matched pair about to be merged.
type Update struct {
	From  *html.Node
	To    *html.Node
	Index int // traversal order of this pair, 0 for the roots
}

// Options configures a Morph.
type Options struct {
	// Updating decides whether a matched pair is merged or skipped.
	// Nil merges everything.
	Updating func(Update) Action

	// Removed is called for every subtree taken out of the live tree.
	Removed func(*html.Node)

	// Key returns the reconciliation key of a node. Nil uses the id
	// attribute of elements.
	Key func(*html.Node) string
}

// Stats counts what a Morph did.
type Stats struct {
	Merged   int
	Skipped  int
	Inserted int
	Removed  int
	Replaced int
}

// Patches returns the number of structural or content changes made.
func (s Stats) Patches() int {
	return s.Merged + s.Inserted + s.Removed + s.Replaced
}

type morpher struct {
	opts  Options
	index int
	stats Stats
}

// Morph patches from in place to match to. Nodes of to that are adopted
// into the live tree are detached from to.
func Morph(from, to *html.Node, opts Options) Stats {
	if opts.Key == nil {
		opts.Key = idKey
	}
	m := &morpher{opts: opts}
	m.patch(from, to)
	return m.stats
}

func idKey(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "id" {
			return a.Val
		}
	}
	return ""
}

// compatible reports whether from can be patched into to rather than replaced.
func compatible(from, to *html.Node) bool {
	if from.Type != to.Type {
		return false
	}
	if from.Type == html.ElementNode {
		return from.Data == to.Data && from.Namespace == to.Namespace
	}
	return true
}

func (m *morpher) patch(from, to *html.Node) {
	if !compatible(from, to) {
		m.replace(from, to)
		return
	}

	u := Update{From: from, To: to, Index: m.index}
	m.index++
	if m.opts.Updating != nil && m.opts.Updating(u) == Skip {
		m.stats.Skipped++
		return
	}

	switch from.Type {
	case html.TextNode, html.CommentNode:
		if from.Data != to.Data {
			from.Data = to.Data
			m.stats.Merged++
		}
		return
	case html.ElementNode:
		if syncAttrs(from, to) {
			m.stats.Merged++
		}
	}
	m.children(from, to)
}

func (m *morpher) replace(from, to *html.Node) {
	if to.Parent != nil {
		to.Parent.RemoveChild(to)
	}
	if parent := from.Parent; parent != nil {
		parent.InsertBefore(to, from)
		parent.RemoveChild(from)
	}
	m.removed(from)
	m.stats.Replaced++
}

func (m *morpher) removed(n *html.Node) {
	if m.opts.Removed != nil {
		m.opts.Removed(n)
	}
}

// syncAttrs makes from's attributes equal to's and reports whether
// anything changed.
func syncAttrs(from, to *html.Node) bool {
	if attrsEqual(from.Attr, to.Attr) {
		return false
	}
	from.Attr = append([]html.Attribute(nil), to.Attr...)
	return true
}

func attrsEqual(a, b []html.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (m *morpher) children(from, to *html.Node) {
	var next []*html.Node
	for c := to.FirstChild; c != nil; c = c.NextSibling {
		next = append(next, c)
	}

	keyed := make(map[string]*html.Node)
	for c := from.FirstChild; c != nil; c = c.NextSibling {
		if k := m.opts.Key(c); k != "" {
			if _, dup := keyed[k]; !dup {
				keyed[k] = c
			}
		}
	}

	used := make(map[*html.Node]bool)
	cur := from.FirstChild
	for _, toChild := range next {
		var match *html.Node
		if k := m.opts.Key(toChild); k != "" {
			if c, ok := keyed[k]; ok && !used[c] && compatible(c, toChild) {
				match = c
			}
		} else if cur != nil && !used[cur] && m.opts.Key(cur) == "" && compatible(cur, toChild) {
			match = cur
		}

		if match == nil {
			to.RemoveChild(toChild)
			from.InsertBefore(toChild, cur)
			m.stats.Inserted++
			continue
		}

		used[match] = true
		if match == cur {
			cur = cur.NextSibling
		} else {
			from.RemoveChild(match)
			from.InsertBefore(match, cur)
		}
		m.patch(match, toChild)
	}

	for c := cur; c != nil; {
		sibling := c.NextSibling
		if !used[c] {
			from.RemoveChild(c)
			m.removed(c)
			m.stats.Removed++
		}
		c = sibling
	}
}
