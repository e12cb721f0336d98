package dom

import (
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var selectorCache sync.Map // string -> cascadia.Sel

func compile(selector string) (cascadia.Sel, error) {
	if s, ok := selectorCache.Load(selector); ok {
		return s.(cascadia.Sel), nil
	}
	s, err := cascadia.Parse(selector)
	if err != nil {
		return nil, err
	}
	selectorCache.Store(selector, s)
	return s, nil
}

// Query returns the first descendant of root matching selector, or nil.
func Query(root *html.Node, selector string) (*html.Node, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.Query(root, sel), nil
}

// QueryAll returns every descendant of root matching selector.
func QueryAll(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.QueryAll(root, sel), nil
}

// Matches reports whether n matches selector. Invalid selectors never match.
func Matches(n *html.Node, selector string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	sel, err := compile(selector)
	if err != nil {
		return false
	}
	return sel.Match(n)
}

// Closest returns n or its nearest ancestor matching selector, or nil.
func Closest(n *html.Node, selector string) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if Matches(p, selector) {
			return p
		}
	}
	return nil
}
