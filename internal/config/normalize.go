package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeInput()
	c.normalizeChambers()
	c.Pivot.Duplicates = strings.ToLower(strings.TrimSpace(c.Pivot.Duplicates))
	if c.Pivot.Duplicates == "" {
		c.Pivot.Duplicates = defaultDuplicates
	}
	c.normalizeMerge()
	c.normalizeOutput()
	return c.normalizeLogging()
}

func (c *Config) normalizeInput() {
	c.Input.TimestampColumn = strings.TrimSpace(c.Input.TimestampColumn)
	c.Input.ChamberColumn = strings.TrimSpace(c.Input.ChamberColumn)
	c.Input.ValueColumn = strings.TrimSpace(c.Input.ValueColumn)
	c.Input.TimestampLayout = strings.TrimSpace(c.Input.TimestampLayout)
	if c.Input.TimestampLayout == "" {
		c.Input.TimestampLayout = defaultLayout
	}
	c.Input.Encoding = strings.ToLower(strings.TrimSpace(c.Input.Encoding))
	if c.Input.Encoding == "" {
		c.Input.Encoding = EncodingAuto
	}
	if c.Input.SampleBytes == 0 {
		c.Input.SampleBytes = defaultSampleBytes
	}
}

func (c *Config) normalizeChambers() {
	c.Chambers.Ambient = trimAll(c.Chambers.Ambient)
	c.Chambers.Symmetric = trimAll(c.Chambers.Symmetric)
	c.Chambers.Asymmetric = trimAll(c.Chambers.Asymmetric)
	groups := trimAll(c.Chambers.DropGroups)
	for i := range groups {
		groups[i] = strings.ToLower(groups[i])
	}
	c.Chambers.DropGroups = groups
}

func (c *Config) normalizeMerge() {
	c.Merge.DayNightPath = strings.TrimSpace(c.Merge.DayNightPath)
	c.Merge.DayNightEncoding = strings.ToLower(strings.TrimSpace(c.Merge.DayNightEncoding))
	c.Merge.DayNightColumn = strings.TrimSpace(c.Merge.DayNightColumn)
	c.Merge.SetpointMinuend = strings.TrimSpace(c.Merge.SetpointMinuend)
	c.Merge.SetpointSubtrahend = strings.TrimSpace(c.Merge.SetpointSubtrahend)
	c.Merge.DerivedColumn = strings.TrimSpace(c.Merge.DerivedColumn)
	c.Merge.AnchorColumn = strings.TrimSpace(c.Merge.AnchorColumn)
}

func (c *Config) normalizeOutput() {
	c.Output.Path = strings.TrimSpace(c.Output.Path)
	if c.Output.Path == "" {
		c.Output.Path = defaultOutputPath
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Output.Sheet = strings.TrimSpace(c.Output.Sheet)
	if c.Output.Sheet == "" {
		c.Output.Sheet = defaultSheet
	}
	c.Output.Table = strings.TrimSpace(c.Output.Table)
	if c.Output.Table == "" {
		c.Output.Table = defaultTable
	}
}

func (c *Config) normalizeLogging() error {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = dir
	}
	if strings.TrimSpace(c.Metrics.Textfile) != "" {
		path, err := expandPath(strings.TrimSpace(c.Metrics.Textfile))
		if err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
		c.Metrics.Textfile = path
	}
	return nil
}

// ResolveFormat returns the configured output format, inferring it from the
// path extension when unset.
func ResolveFormat(format, path string) string {
	if format = strings.ToLower(strings.TrimSpace(format)); format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
