// Package dom provides the live document the Hydro client operates on.
//
// A Document is an html.Node tree (golang.org/x/net/html) plus a side
// table of live form state. Markup attributes hold the defaults a page
// was rendered with (value, checked, selected); the side table holds
// what the user changed since, the same split a browser makes between
// attributes and properties. Reconciliation rewrites attributes without
// touching the side table, so in-progress user input survives a patch.
//
// # Locking
//
// The tree is shared between the request pipeline, the page navigator
// and callers. All node and state accessors assume the caller holds the
// document lock: use Read for inspection and Write for mutation.
//
//	doc.Read(func(root *html.Node) {
//	    input, _ := dom.Query(root, "input[name=title]")
//	    fmt.Println(doc.Value(input), doc.IsDirty(input))
//	})
//
// # Selectors
//
// Query, QueryAll, Matches and Closest accept CSS selectors compiled with
// cascadia. Compiled selectors are cached.
package dom
