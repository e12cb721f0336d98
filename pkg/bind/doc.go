// Package bind coalesces bound input changes into batched requests.
//
// Each component binding URL owns an accumulator of field values and a
// single-shot debounce timer. Every change cancels the pending timer,
// records name=value (last write wins within the window) and starts the
// timer again. When the timer fires, the accumulator is swapped for a
// fresh one and its fields are sent in one request; edits that arrive
// while that request runs land in the next window.
//
// Every Bind call of a window returns once the window's request has been
// sent and answered, with that request's error.
package bind
