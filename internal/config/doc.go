// Package config loads, normalizes, and validates chamberpivot configuration.
//
// It supplies repository defaults (input column names, chamber groups, the
// set-point columns feeding asym_sp, output format), expands user paths
// including tilde shortcuts, and reads TOML files. A missing config file is not
// an error: the defaults describe the standard Tableau chamber export.
//
// Always obtain settings through this package so the pipeline receives
// trimmed names, canonical format strings, and clear validation errors.
package config
