// Package hydrotest provides a fake Hydro server for tests.
//
// The server serves full pages on GET and answers component requests on
// POST with markup and optional effect headers. Every request is
// recorded so tests can assert on the headers and form fields the
// client sent:
//
//	srv := hydrotest.New(t)
//	srv.Page("/", hydrotest.Document("Counter",
//	    hydrotest.Component("c1", "Counter", `{"count":0}`,
//	        `<button x-hydro-action="/hydro/Counter/add">0</button>`)))
//	srv.Handle("/hydro/Counter/add", func(call *hydrotest.Call) hydrotest.Reply {
//	    return hydrotest.Reply{Markup: ...}
//	})
package hydrotest
