package component

import (
	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/pkg/dom"
)

const (
	// MarkerAttr marks a component root.
	MarkerAttr = "hydro"

	// NameAttr holds the component name.
	NameAttr = "hydro-name"

	// stateSelector matches the per-component state scripts.
	stateSelector = "script[data-id]"
)

// Component is a located component root.
type Component struct {
	ID   string
	Name string
	Node *html.Node
}

// Ancestor returns start or its nearest ancestor for which has reports
// true. parent returns the zero value at the top of the tree.
func Ancestor[N comparable](start N, parent func(N) N, has func(N) bool) (N, bool) {
	var zero N
	for n := start; n != zero; n = parent(n) {
		if has(n) {
			return n, true
		}
	}
	return zero, false
}

func htmlParent(n *html.Node) *html.Node { return n.Parent }

// IsRoot reports whether n is a component root.
func IsRoot(n *html.Node) bool {
	return dom.IsElement(n) && dom.HasAttr(n, MarkerAttr)
}

// Locate returns the component enclosing n, n included.
func Locate(n *html.Node) (Component, bool) {
	if n == nil {
		return Component{}, false
	}
	root, ok := Ancestor(n, htmlParent, IsRoot)
	if !ok {
		return Component{}, false
	}
	return Component{
		ID:   dom.AttrOr(root, "id", ""),
		Name: dom.AttrOr(root, NameAttr, ""),
		Node: root,
	}, true
}

// LocateParent returns the component enclosing c, c excluded.
func LocateParent(c Component) (Component, bool) {
	if c.Node == nil {
		return Component{}, false
	}
	return Locate(c.Node.Parent)
}

// State returns the serialized state snapshot of c: the text of the
// script[data-id] element whose data-id equals the component id.
func State(c Component) (string, bool) {
	scripts, _ := dom.QueryAll(c.Node, stateSelector)
	for _, s := range scripts {
		if dom.AttrOr(s, "data-id", "") == c.ID {
			return dom.Text(s), true
		}
	}
	return "", false
}

// IDs returns the component id manifest: c's id first, then the data-id
// of every state script in the subtree in document order, skipping
// scripts that repeat c's own id.
func IDs(c Component) []string {
	ids := []string{c.ID}
	scripts, _ := dom.QueryAll(c.Node, stateSelector)
	for _, s := range scripts {
		id := dom.AttrOr(s, "data-id", "")
		if id == c.ID {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// BindURL returns the endpoint bound fields of c are posted to.
func BindURL(c Component) string {
	return "/hydro/" + c.Name
}
