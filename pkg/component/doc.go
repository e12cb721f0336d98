// Package component locates Hydro components in a live document.
//
// A component is the nearest element carrying the hydro attribute. Its
// id attribute is the component id, hydro-name its name. Components form
// a tree only through document nesting; nothing here stores that tree,
// every lookup walks ancestors again.
//
// The walk itself is Ancestor, a generic nearest-ancestor query over any
// tree given a parent function and a capability predicate.
package component
