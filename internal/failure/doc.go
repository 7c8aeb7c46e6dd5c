// Package failure classifies pipeline errors.
//
// Every stage wraps its errors with one of the exported sentinel markers so
// the CLI can pick an exit status and the logs can name the failing stage
// without parsing message text. Use errors.Is against the markers; never
// compare error strings.
package failure
