// Package main hosts the chamberpivot CLI entrypoint and command graph.
//
// The Cobra command tree validates file arguments (mapping usage problems to
// the historical exit codes), resolves configuration, builds the structured
// logger, and hands the run to the pipeline package. A summary table is
// printed on stdout when a run succeeds; logs go to stderr.
//
// Keep this package thin: transformation logic belongs in internal packages.
package main
