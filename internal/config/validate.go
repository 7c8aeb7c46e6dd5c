package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateChambers(); err != nil {
		return err
	}
	if err := c.validatePivot(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateInput() error {
	if err := ensureNonEmpty(map[string]string{
		"input.timestamp_column": c.Input.TimestampColumn,
		"input.chamber_column":   c.Input.ChamberColumn,
		"input.value_column":     c.Input.ValueColumn,
	}); err != nil {
		return err
	}
	if c.Input.SampleBytes <= 0 {
		return errors.New("input.sample_bytes must be positive")
	}
	if c.Input.Encoding != EncodingAuto {
		if _, err := htmlindex.Get(c.Input.Encoding); err != nil {
			return fmt.Errorf("input.encoding: unsupported encoding %q", c.Input.Encoding)
		}
	}
	return nil
}

func (c *Config) validateChambers() error {
	seen := make(map[string]string)
	groups := map[string][]string{
		GroupAmbient:    c.Chambers.Ambient,
		GroupSymmetric:  c.Chambers.Symmetric,
		GroupAsymmetric: c.Chambers.Asymmetric,
	}
	for _, group := range []string{GroupAmbient, GroupSymmetric, GroupAsymmetric} {
		for _, id := range groups[group] {
			if other, ok := seen[id]; ok {
				return fmt.Errorf("chambers: %q listed in both %s and %s", id, other, group)
			}
			seen[id] = group
		}
	}
	for _, group := range c.Chambers.DropGroups {
		if _, ok := c.GroupMembers(group); !ok {
			return fmt.Errorf("chambers.drop_groups: unknown group %q", group)
		}
	}
	if c.Chambers.SymmetricWarming < 0 {
		return errors.New("chambers.symmetric_warming must be >= 0")
	}
	return nil
}

func (c *Config) validatePivot() error {
	switch strings.ToLower(strings.TrimSpace(c.Pivot.Duplicates)) {
	case DuplicatesMean, DuplicatesLast, DuplicatesError:
		return nil
	default:
		return fmt.Errorf("pivot.duplicates: unsupported policy %q (want mean, last, or error)", c.Pivot.Duplicates)
	}
}

func (c *Config) validateMerge() error {
	if err := ensureNonEmpty(map[string]string{
		"merge.day_night_column":    c.Merge.DayNightColumn,
		"merge.setpoint_minuend":    c.Merge.SetpointMinuend,
		"merge.setpoint_subtrahend": c.Merge.SetpointSubtrahend,
		"merge.derived_column":      c.Merge.DerivedColumn,
		"merge.anchor_column":       c.Merge.AnchorColumn,
	}); err != nil {
		return err
	}
	if c.Merge.DerivedPrecision < 0 {
		return errors.New("merge.derived_precision must be >= 0")
	}
	if c.Merge.DayNightEncoding != "" && c.Merge.DayNightEncoding != EncodingAuto {
		if _, err := htmlindex.Get(c.Merge.DayNightEncoding); err != nil {
			return fmt.Errorf("merge.day_night_encoding: unsupported encoding %q", c.Merge.DayNightEncoding)
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "", FormatCSV, FormatXLSX, FormatSQLite:
		return nil
	default:
		return fmt.Errorf("output.format: unsupported value %q (want csv, xlsx, or sqlite)", c.Output.Format)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensureNonEmpty(values map[string]string) error {
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}
