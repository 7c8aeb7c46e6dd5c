// Package logging assembles structured slog loggers used across chamberpivot.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline stages automatically
// tag log lines with the run correlation ID and stage name. The package also
// provides a no-op logger for tests.
package logging
