// Package errors provides structured, coded errors for the Hydro client.
//
// Every failure the client surfaces to callers is a *HydroError carrying
// a short code (e.g. "H001") that maps to a registered message, a
// category and a longer explanation. Lower-level causes are kept in
// Wrapped so errors.Is and errors.As keep working.
//
// # Error Categories
//
//   - resolution: a component, state snapshot or anti-forgery context is missing
//   - transport: non-success HTTP status or network failure
//   - protocol: malformed response headers
//   - config: invalid page or client configuration
//   - storage: snapshot persistence failures
//
// # Usage
//
//	err := errors.New("H001").
//	    WithDetail("no [hydro] ancestor for <button id=save>").
//	    WithSuggestion("Render the element inside a Hydro component")
//
//	if errors.HasCode(err, "H001") {
//	    ...
//	}
//
//	fmt.Println(err.Format())
package errors
