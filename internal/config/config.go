package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Input describes the long-form export layout.
type Input struct {
	TimestampColumn string `toml:"timestamp_column"`
	ChamberColumn   string `toml:"chamber_column"`
	ValueColumn     string `toml:"value_column"`
	TimestampLayout string `toml:"timestamp_layout"`
	// Encoding is "auto" for detection or a WHATWG encoding label.
	Encoding    string `toml:"encoding"`
	SampleBytes int    `toml:"sample_bytes"`
}

// Chambers holds the static chamber groups and the warming target.
type Chambers struct {
	Ambient          []string `toml:"ambient"`
	Symmetric        []string `toml:"symmetric"`
	Asymmetric       []string `toml:"asymmetric"`
	DropGroups       []string `toml:"drop_groups"`
	SymmetricWarming float64  `toml:"symmetric_warming"`
}

// Pivot controls long-to-wide reshaping.
type Pivot struct {
	// Duplicates is one of "mean", "last", "error".
	Duplicates string `toml:"duplicates"`
}

// Merge contains the auxiliary-table settings used by merge mode.
type Merge struct {
	DayNightPath       string `toml:"day_night_path"`
	DayNightEncoding   string `toml:"day_night_encoding"`
	DayNightColumn     string `toml:"day_night_column"`
	SetpointMinuend    string `toml:"setpoint_minuend"`
	SetpointSubtrahend string `toml:"setpoint_subtrahend"`
	DerivedColumn      string `toml:"derived_column"`
	DerivedPrecision   int    `toml:"derived_precision"`
	AnchorColumn       string `toml:"anchor_column"`
}

// Output controls the written artifact.
type Output struct {
	Path string `toml:"path"`
	// Format is "csv", "xlsx", "sqlite", or empty to infer from the path.
	Format string `toml:"format"`
	Sheet  string `toml:"sheet"`
	Table  string `toml:"table"`
	Lock   bool   `toml:"lock"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Metrics configures the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for chamberpivot.
//
// Configuration sections:
//   - Input: export column names, timestamp layout, encoding detection
//   - Chambers: ambient/symmetric/asymmetric groups and the drop policy
//   - Pivot: duplicate (timestamp, chamber) handling
//   - Merge: day/night and set-point auxiliary tables, anchor filter
//   - Output: default output path and format
//   - Logging: log format, level, and optional log directory
//   - Metrics: Prometheus textfile path
type Config struct {
	Input    Input    `toml:"input"`
	Chambers Chambers `toml:"chambers"`
	Pivot    Pivot    `toml:"pivot"`
	Merge    Merge    `toml:"merge"`
	Output   Output   `toml:"output"`
	Logging  Logging  `toml:"logging"`
	Metrics  Metrics  `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and names trimmed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	enc := toml.NewEncoder(&b)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}

// GroupMembers returns the chamber ids of a named group.
func (c *Config) GroupMembers(group string) ([]string, bool) {
	switch strings.ToLower(strings.TrimSpace(group)) {
	case GroupAmbient:
		return c.Chambers.Ambient, true
	case GroupSymmetric:
		return c.Chambers.Symmetric, true
	case GroupAsymmetric:
		return c.Chambers.Asymmetric, true
	default:
		return nil, false
	}
}

// DropColumns expands Chambers.DropGroups into column names.
func (c *Config) DropColumns() []string {
	var out []string
	for _, group := range c.Chambers.DropGroups {
		members, _ := c.GroupMembers(group)
		out = append(out, members...)
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
