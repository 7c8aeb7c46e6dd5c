// Package ingest reads long-form chamber exports into frame observations.
//
// Loading happens in three steps: the first sample of the file goes through
// an EncodingDetector, the first decoded line goes through a
// DelimiterDetector, and the decoded text is parsed as a delimited table with
// a header row. Both detectors are interfaces so callers can pin an encoding
// (the day/night export is always UTF-16) or plug in a different heuristic.
package ingest
