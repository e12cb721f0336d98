// Package snapshot stores rendered documents.
//
// The hydro command uses it to keep the final state of a page after a
// scripted interaction, either on local disk or in an S3 bucket:
//
//	store, _ := snapshot.NewDiskStore(".hydro/snapshots")
//	loc, err := store.Save(ctx, "checkout/after-submit", []byte(html))
//
// Keys are slash separated paths without a file extension; stores add
// ".html".
package snapshot
