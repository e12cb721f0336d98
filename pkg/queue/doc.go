// Package queue serializes units of work into independent FIFO lanes.
//
// Each lane is identified by a string key. Within a lane, units run one
// at a time in the order they were enqueued; a unit starts only after
// the previous one has finished, whether it succeeded, failed or
// panicked. Failures are logged and kept on the unit's Ticket; they never
// block later units.
//
// The Hydro client sends every request through the lane with the empty
// key, so at most one request is in flight at any time.
package queue
