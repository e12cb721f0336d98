// Package morph patches a live html.Node tree in place to match a new one.
//
// Morph walks the old ("from") and new ("to") trees together. Matching
// element pairs keep the old node: its attributes are rewritten from the
// new node and its children are reconciled recursively. Children are
// matched by key (the id attribute by default), otherwise by position
// when node type and tag agree. Unmatched new children are moved into
// the live tree; unmatched old children are removed.
//
// Keeping the old nodes is what lets callers hang state off node
// identity (live form values, focus) and have it survive a patch.
//
// Before each matched pair is merged, Options.Updating is consulted with
// the pair and its traversal index (0 for the roots). Returning Skip
// leaves the old subtree untouched.
package morph
