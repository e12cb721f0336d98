package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InputType returns the control type the way a browser reports it:
// the lowercased type attribute for inputs (default "text"), "textarea",
// "select-one" or "select-multiple" for selects, "" for anything else.
func InputType(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	switch n.DataAtom {
	case atom.Input:
		t := strings.ToLower(strings.TrimSpace(AttrOr(n, "type", "")))
		if t == "" {
			return "text"
		}
		return t
	case atom.Textarea:
		return "textarea"
	case atom.Select:
		if HasAttr(n, "multiple") {
			return "select-multiple"
		}
		return "select-one"
	case atom.Button:
		t := strings.ToLower(AttrOr(n, "type", ""))
		if t == "" {
			return "submit"
		}
		return t
	}
	return ""
}

// IsCheckable reports whether n is a checkbox or radio input.
func IsCheckable(n *html.Node) bool {
	t := InputType(n)
	return n.DataAtom == atom.Input && (t == "checkbox" || t == "radio")
}

func (d *Document) live(n *html.Node) *liveState {
	s, ok := d.state[n]
	if !ok {
		s = &liveState{}
		d.state[n] = s
	}
	return s
}

// DefaultValue returns the value n was rendered with.
func DefaultValue(n *html.Node) string {
	switch n.DataAtom {
	case atom.Textarea:
		return Text(n)
	case atom.Option:
		if v, ok := Attr(n, "value"); ok {
			return v
		}
		return strings.TrimSpace(Text(n))
	case atom.Select:
		for _, o := range Options(n) {
			if DefaultSelected(o) {
				return DefaultValue(o)
			}
		}
		if opts := Options(n); len(opts) > 0 && !HasAttr(n, "multiple") {
			return DefaultValue(opts[0])
		}
		return ""
	}
	v, ok := Attr(n, "value")
	if !ok && IsCheckable(n) {
		return "on"
	}
	return v
}

// Value returns the live value of a form control.
func (d *Document) Value(n *html.Node) string {
	if n.DataAtom == atom.Select {
		opts := Options(n)
		for _, o := range opts {
			if d.Selected(o) {
				return DefaultValue(o)
			}
		}
		if len(opts) > 0 && !HasAttr(n, "multiple") && !d.anyExplicitSelection(opts) {
			return DefaultValue(opts[0])
		}
		return ""
	}
	if s, ok := d.state[n]; ok && s.value != nil {
		return *s.value
	}
	return DefaultValue(n)
}

func (d *Document) anyExplicitSelection(opts []*html.Node) bool {
	for _, o := range opts {
		if s, ok := d.state[o]; ok && s.selected != nil {
			return true
		}
	}
	return false
}

// SetValue sets the live value of a form control. For selects, the
// option whose value equals v becomes selected and all others are
// deselected.
func (d *Document) SetValue(n *html.Node, v string) {
	if n.DataAtom == atom.Select {
		for _, o := range Options(n) {
			d.SetSelected(o, DefaultValue(o) == v)
		}
		return
	}
	d.live(n).value = &v
}

// DefaultChecked reports the rendered checked state.
func DefaultChecked(n *html.Node) bool {
	return HasAttr(n, "checked")
}

// Checked returns the live checked state of a checkbox or radio.
func (d *Document) Checked(n *html.Node) bool {
	if s, ok := d.state[n]; ok && s.checked != nil {
		return *s.checked
	}
	return DefaultChecked(n)
}

// SetChecked sets the live checked state. Checking a radio unchecks the
// other radios of the same name in its form.
func (d *Document) SetChecked(n *html.Node, checked bool) {
	d.live(n).checked = &checked
	if !checked || InputType(n) != "radio" {
		return
	}
	name, ok := Attr(n, "name")
	if !ok || name == "" {
		return
	}
	scope := Closest(n, "form")
	if scope == nil {
		scope = d.root
	}
	radios, _ := QueryAll(scope, "input[type=radio]")
	for _, r := range radios {
		if r != n && AttrOr(r, "name", "") == name {
			f := false
			d.live(r).checked = &f
		}
	}
}

// DefaultSelected reports the rendered selected state of an option.
func DefaultSelected(n *html.Node) bool {
	return HasAttr(n, "selected")
}

// Selected returns the live selected state of an option.
func (d *Document) Selected(n *html.Node) bool {
	if s, ok := d.state[n]; ok && s.selected != nil {
		return *s.selected
	}
	return DefaultSelected(n)
}

// SetSelected sets the live selected state of an option.
func (d *Document) SetSelected(n *html.Node, selected bool) {
	d.live(n).selected = &selected
}

// Options returns the option elements of a select.
func Options(n *html.Node) []*html.Node {
	opts, _ := QueryAll(n, "option")
	return opts
}

// Disabled reports whether n carries the disabled attribute.
func (d *Document) Disabled(n *html.Node) bool {
	return HasAttr(n, "disabled")
}

// SetDisabled reflects disabled onto the attribute, as browsers do.
func (d *Document) SetDisabled(n *html.Node, disabled bool) {
	if disabled {
		SetAttr(n, "disabled", "")
		return
	}
	RemoveAttr(n, "disabled")
}

// Field is one name/value pair of a form submission.
type Field struct {
	Name  string
	Value string
}

// FormFields collects the successful controls of form in document
// order: named, enabled controls, checked checkboxes and radios only,
// every selected option of a select.
func (d *Document) FormFields(form *html.Node) []Field {
	var fields []Field
	walk(form, func(n *html.Node) bool {
		if !IsElement(n) {
			return true
		}
		name, ok := Attr(n, "name")
		if !ok || name == "" || d.Disabled(n) {
			return true
		}
		switch n.DataAtom {
		case atom.Input:
			switch InputType(n) {
			case "submit", "button", "reset", "image", "file":
				return true
			case "checkbox", "radio":
				if !d.Checked(n) {
					return true
				}
			}
			fields = append(fields, Field{Name: name, Value: d.Value(n)})
		case atom.Textarea:
			fields = append(fields, Field{Name: name, Value: d.Value(n)})
		case atom.Select:
			opts := Options(n)
			picked := false
			for _, o := range opts {
				if d.Selected(o) {
					picked = true
					fields = append(fields, Field{Name: name, Value: DefaultValue(o)})
					if !HasAttr(n, "multiple") {
						break
					}
				}
			}
			if !picked && len(opts) > 0 && !HasAttr(n, "multiple") && !d.anyExplicitSelection(opts) {
				fields = append(fields, Field{Name: name, Value: DefaultValue(opts[0])})
			}
			return false
		}
		return true
	})
	return fields
}
