package bind

import "github.com/hydrostack/hydro-go/pkg/dom"

// Fields is an insertion-ordered set of form fields. Setting an existing
// name replaces its value in place.
type Fields struct {
	names  []string
	values map[string]string
}

// NewFields creates an empty set.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set records name=value.
func (f *Fields) Set(name, value string) {
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.names)
}

// List returns the fields in insertion order.
func (f *Fields) List() []dom.Field {
	out := make([]dom.Field, 0, len(f.names))
	for _, n := range f.names {
		out = append(out, dom.Field{Name: n, Value: f.values[n]})
	}
	return out
}
