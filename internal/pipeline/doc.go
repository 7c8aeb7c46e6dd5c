// Package pipeline runs the chamber export transformation end to end.
//
// A run is linear: load every input, pivot each to wide form, drop the
// configured chamber groups, filter incomplete rows, merge auxiliary columns
// (merge mode only), then write. All inputs are loaded before anything is
// written, so a failure in any stage leaves no output behind. Each stage logs
// start, completion, and failure under the run's correlation ID.
package pipeline
