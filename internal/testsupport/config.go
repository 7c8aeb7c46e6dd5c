package testsupport

import (
	"path/filepath"
	"testing"

	"chamberpivot/internal/config"
)

// ConfigOption mutates a test configuration.
type ConfigOption func(*config.Config)

// WithDayNightPath points merge mode at a day/night export.
func WithDayNightPath(path string) ConfigOption {
	return func(cfg *config.Config) { cfg.Merge.DayNightPath = path }
}

// WithOutput overrides the output path.
func WithOutput(path string) ConfigOption {
	return func(cfg *config.Config) { cfg.Output.Path = path }
}

// NewConfig returns a validated default configuration whose output lands in a
// temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Path = filepath.Join(t.TempDir(), "out.csv")
	cfg.Merge.DayNightPath = filepath.Join(t.TempDir(), "day_night.csv")
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
