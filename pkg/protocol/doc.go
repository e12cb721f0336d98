// Package protocol defines the Hydro HTTP header protocol.
//
// Requests carry component identity and state in headers:
//
//	Hydro-Request: true            every request
//	Hydro-Boosted: true            in-page navigation (GET)
//	Hydro-All-Ids: ["p1","c1"]     acting component first, then nested ones
//	Hydro-Model: <opaque state>    acting component's state snapshot
//	Hydro-Event-Name: saved        event-sourced requests only
//	Hydro-Parameters: <json>       caller-supplied parameters
//
// Responses steer side effects:
//
//	Hydro-Location: {"path":"/todos","target":"#main"}
//	Hydro-Redirect: /login
//	Hydro-Trigger: [{"name":"saved","scope":"global","data":{"id":7}}]
package protocol
