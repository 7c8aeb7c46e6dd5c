// Package frame holds the in-memory tables the pipeline reshapes.
//
// Long-form data is a slice of Observation triples. Pivot turns it into a
// Wide table: one row per distinct timestamp (ascending), one column per
// chamber (sorted). Wide tables are immutable; every filter, join, or derive
// returns a new table and leaves its receiver untouched.
package frame
