// Package export writes wide tables to disk.
//
// Every format writes to a temp file beside the destination and renames it
// into place, optionally under an advisory lock on "<path>.lock", so a failed
// run never leaves a partial output behind. The leading column is always the
// timestamp index.
package export
