// Package reconcile applies a component's response markup to the live
// document.
//
// Structural patching is delegated to package morph. The policy added
// here keeps a parent's response from clobbering the components nested
// inside it: any matched pair past the root whose old and new nodes are
// both component roots is skipped, so a nested component keeps whatever
// state its own requests gave it. The root itself (traversal index 0)
// is always merged even though it is a component root too.
//
// Checkboxes keep the checked state the user gave them: before each
// checkbox pair is decided, the old node's live checked state is pinned
// in the document's live state. The markup's checked attribute is still
// taken from the server, so it stays the baseline dirty tracking
// compares against.
package reconcile

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/component"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/morph"
)

// Policy decides per matched pair. It is exported so the decision can be
// tested and reused without a full reconcile.
func Policy(doc *dom.Document) func(morph.Update) morph.Action {
	return func(u morph.Update) morph.Action {
		if u.Index != 0 && component.IsRoot(u.To) && component.IsRoot(u.From) {
			return morph.Skip
		}
		// The checked attribute is the rendered default and follows the
		// server; only the live state is pinned.
		if isCheckbox(u.From) {
			doc.SetChecked(u.From, doc.Checked(u.From))
		}
		return morph.Merge
	}
}

func isCheckbox(n *html.Node) bool {
	return dom.IsElement(n) && n.DataAtom == atom.Input && dom.InputType(n) == "checkbox"
}

// Reconcile patches component c in doc with markup. The caller must hold
// the document write lock.
func Reconcile(doc *dom.Document, c component.Component, markup string) (morph.Stats, error) {
	nodes, err := dom.ParseFragment(c.Node.Parent, markup)
	if err != nil {
		return morph.Stats{}, errors.New("H022").Wrap(err)
	}
	var root *html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			root = n
			break
		}
	}
	if root == nil {
		return morph.Stats{}, errors.New("H022").WithDetail("component " + c.ID)
	}

	stats := morph.Morph(c.Node, root, morph.Options{
		Updating: Policy(doc),
		Removed:  doc.Forget,
	})
	return stats, nil
}
