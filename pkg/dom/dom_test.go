package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html>
<html><head><title> Todos </title></head>
<body>
<div id="c1" hydro hydro-name="Todos" class="card">
  <form id="f">
    <input id="title" name="title" value="milk">
    <input id="done" type="checkbox" name="done" checked>
    <input id="flag" type="checkbox" name="flag">
    <input id="r1" type="radio" name="prio" value="low" checked>
    <input id="r2" type="radio" name="prio" value="high">
    <textarea id="notes" name="notes">buy soon</textarea>
    <select id="size" name="size"><option value="s">S</option><option value="m" selected>M</option></select>
    <input id="off" name="off" value="x" disabled>
    <button id="save" type="submit" name="save">Save</button>
  </form>
</div>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	d, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return d
}

func mustQuery(t *testing.T, root *html.Node, sel string) *html.Node {
	t.Helper()
	n, err := Query(root, sel)
	if err != nil {
		t.Fatalf("Query(%q): %v", sel, err)
	}
	if n == nil {
		t.Fatalf("Query(%q) found nothing", sel)
	}
	return n
}

func TestTitle(t *testing.T) {
	d := mustParse(t, page)
	if got := d.Title(); got != "Todos" {
		t.Errorf("Title() = %q, want Todos", got)
	}
	d.SetTitle("Done")
	if got := d.Title(); got != "Done" {
		t.Errorf("Title() after SetTitle = %q, want Done", got)
	}
}

func TestClosestAndMatches(t *testing.T) {
	d := mustParse(t, page)
	input := mustQuery(t, d.Root(), "#title")

	c := Closest(input, "[hydro]")
	if c == nil || AttrOr(c, "id", "") != "c1" {
		t.Fatalf("Closest([hydro]) = %v, want #c1", c)
	}
	if Closest(input, "[nope]") != nil {
		t.Error("Closest([nope]) should be nil")
	}
	if !Matches(c, "div.card") {
		t.Error("Matches(div.card) = false")
	}
	if Matches(c, "((") {
		t.Error("invalid selector must not match")
	}
	if _, err := Query(d.Root(), "(("); err == nil {
		t.Error("Query with invalid selector should fail")
	}
}

func TestClasses(t *testing.T) {
	d := mustParse(t, page)
	c := mustQuery(t, d.Root(), "#c1")

	AddClass(c, "hydro-request")
	AddClass(c, "hydro-request")
	if got := AttrOr(c, "class", ""); got != "card hydro-request" {
		t.Errorf("class = %q", got)
	}
	RemoveClass(c, "card")
	RemoveClass(c, "hydro-request")
	if HasAttr(c, "class") {
		t.Errorf("class attribute should be removed, got %q", AttrOr(c, "class", ""))
	}
}

func TestValueAndDefaults(t *testing.T) {
	d := mustParse(t, page)
	root := d.Root()

	title := mustQuery(t, root, "#title")
	if got := d.Value(title); got != "milk" {
		t.Errorf("Value(title) = %q, want milk", got)
	}
	d.SetValue(title, "bread")
	if got := d.Value(title); got != "bread" {
		t.Errorf("Value(title) = %q, want bread", got)
	}
	if got := DefaultValue(title); got != "milk" {
		t.Errorf("DefaultValue(title) = %q, want milk", got)
	}

	notes := mustQuery(t, root, "#notes")
	if got := d.Value(notes); got != "buy soon" {
		t.Errorf("Value(notes) = %q", got)
	}

	size := mustQuery(t, root, "#size")
	if got := d.Value(size); got != "m" {
		t.Errorf("Value(size) = %q, want m", got)
	}
	d.SetValue(size, "s")
	if got := d.Value(size); got != "s" {
		t.Errorf("Value(size) after SetValue = %q, want s", got)
	}
}

func TestRadioGroup(t *testing.T) {
	d := mustParse(t, page)
	r1 := mustQuery(t, d.Root(), "#r1")
	r2 := mustQuery(t, d.Root(), "#r2")

	d.SetChecked(r2, true)
	if d.Checked(r1) {
		t.Error("checking r2 should uncheck r1")
	}
	if !d.Checked(r2) {
		t.Error("r2 should be checked")
	}
}

func TestIsDirty(t *testing.T) {
	tests := []struct {
		name   string
		sel    string
		mutate func(d *Document, n *html.Node)
		want   bool
	}{
		{"text unchanged", "#title", func(d *Document, n *html.Node) {}, false},
		{"text changed", "#title", func(d *Document, n *html.Node) { d.SetValue(n, "eggs") }, true},
		{"text changed back", "#title", func(d *Document, n *html.Node) {
			d.SetValue(n, "eggs")
			d.SetValue(n, "milk")
		}, false},
		{"checkbox unchecked", "#done", func(d *Document, n *html.Node) { d.SetChecked(n, false) }, true},
		{"checkbox same", "#flag", func(d *Document, n *html.Node) { d.SetChecked(n, false) }, false},
		{"radio changed", "#r2", func(d *Document, n *html.Node) { d.SetChecked(n, true) }, true},
		{"textarea changed", "#notes", func(d *Document, n *html.Node) { d.SetValue(n, "later") }, true},
		{"select changed", "#size", func(d *Document, n *html.Node) { d.SetValue(n, "s") }, true},
		{"select reselected", "#size", func(d *Document, n *html.Node) { d.SetValue(n, "m") }, false},
		{"button never dirty", "#save", func(d *Document, n *html.Node) { d.SetValue(n, "x") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustParse(t, page)
			n := mustQuery(t, d.Root(), tt.sel)
			tt.mutate(d, n)
			if got := d.IsDirty(n); got != tt.want {
				t.Errorf("IsDirty = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormFields(t *testing.T) {
	d := mustParse(t, page)
	form := mustQuery(t, d.Root(), "#f")
	d.SetValue(mustQuery(t, d.Root(), "#title"), "bread")

	var got []string
	for _, f := range d.FormFields(form) {
		got = append(got, f.Name+"="+f.Value)
	}
	want := "title=bread done=on prio=low notes=buy soon size=m"
	if strings.Join(got, " ") != want {
		t.Errorf("FormFields = %q, want %q", strings.Join(got, " "), want)
	}
}

func TestSetInnerHTMLForgetsState(t *testing.T) {
	d := mustParse(t, page)
	title := mustQuery(t, d.Root(), "#title")
	d.SetValue(title, "bread")
	d.Focus(title)

	form := mustQuery(t, d.Root(), "#f")
	if err := d.SetInnerHTML(form, `<input id="title" name="title" value="tea">`); err != nil {
		t.Fatalf("SetInnerHTML: %v", err)
	}
	if _, ok := d.state[title]; ok {
		t.Error("state of removed node should be forgotten")
	}
	if d.ActiveElement() != nil {
		t.Error("removed active element should be cleared")
	}
	fresh := mustQuery(t, d.Root(), "#title")
	if got := d.Value(fresh); got != "tea" {
		t.Errorf("Value(new title) = %q, want tea", got)
	}
}

func TestDisabledReflectsAttribute(t *testing.T) {
	d := mustParse(t, page)
	btn := mustQuery(t, d.Root(), "#save")

	d.SetDisabled(btn, true)
	if !HasAttr(btn, "disabled") || !d.Disabled(btn) {
		t.Error("SetDisabled(true) should set the attribute")
	}
	d.SetDisabled(btn, false)
	if d.Disabled(btn) {
		t.Error("SetDisabled(false) should clear the attribute")
	}
}

func TestReplaceDropsState(t *testing.T) {
	d := mustParse(t, page)
	d.SetValue(mustQuery(t, d.Root(), "#title"), "bread")

	other := mustParse(t, `<html><body><p>x</p></body></html>`)
	d.Replace(other.Root())
	if len(d.state) != 0 {
		t.Errorf("state entries = %d, want 0", len(d.state))
	}
	if !strings.Contains(d.HTML(), "<p>x</p>") {
		t.Errorf("HTML() = %s", d.HTML())
	}
}
