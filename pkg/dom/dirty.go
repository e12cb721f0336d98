package dom

import "golang.org/x/net/html"

// IsDirty reports whether the live state of a form control differs from
// the state it was rendered with. Controls other than checkable inputs,
// text-like inputs and selects are never dirty.
func (d *Document) IsDirty(n *html.Node) bool {
	switch InputType(n) {
	case "checkbox", "radio":
		return d.Checked(n) != DefaultChecked(n)
	case "hidden", "password", "text", "textarea":
		return d.Value(n) != DefaultValue(n)
	case "select-one", "select-multiple":
		for _, o := range Options(n) {
			if d.Selected(o) != DefaultSelected(o) {
				return true
			}
		}
	}
	return false
}
