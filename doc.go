// Package hydro is a headless client for Hydro server components.
//
// A Client holds a live HTML document and drives it the way the Hydro
// browser script does: interactions become requests whose markup
// responses are morphed into the component they came from, and response
// headers can navigate, redirect or broadcast events to other
// components.
//
// Usage:
//
//	c := hydro.New(hydro.Config{BaseURL: "http://localhost:5000"})
//	defer c.Close()
//
//	if err := c.Load(ctx, "/"); err != nil {
//	    return err
//	}
//	c.WireEvents()
//
//	button, _ := c.Query("#counter button")
//	if err := c.Click(ctx, button); err != nil {
//	    return err
//	}
//
// All requests of a page run one at a time in the order they were
// issued, so a request always sees the state left by the previous one.
// Bound inputs are debounced per component and sent in batches.
package hydro
