// Package workflow owns the asynchronous generation lifecycle: it polls a
// submitted request until a terminal status, a failure, or the configured
// maximum wait elapses.
//
// The loop is deliberately explicit: a monotonic deadline check per
// iteration and an injectable sleep primitive, so tests can run it against
// a virtual clock without wall-clock waiting. Cancellation mid-poll is
// cooperative; an in-flight HTTP call is never aborted by the deadline,
// only the next iteration is prevented.
package workflow
