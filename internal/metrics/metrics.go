// Package metrics exports run statistics in the Prometheus text format so the
// node_exporter textfile collector can scrape batch runs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run is the subset of a pipeline report exported as gauges.
type Run struct {
	Mode        string
	RowsBefore  int
	RowsAfter   int
	LossRatio   float64
	InputBytes  int64
	OutputBytes int64
	Duration    time.Duration
	Finished    time.Time
}

// Registry builds a fresh registry holding the gauges for run.
func Registry(run Run) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"mode": run.Mode}

	gauge := func(name, help string, value float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "chamberpivot",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(value)
		reg.MustRegister(g)
	}

	gauge("rows_before_filter", "Wide rows before the completeness filter.", float64(run.RowsBefore))
	gauge("rows_after_filter", "Wide rows written to the output.", float64(run.RowsAfter))
	gauge("rows_dropped_ratio", "Fraction of rows dropped as incomplete.", run.LossRatio)
	gauge("input_bytes", "Total size of the input files.", float64(run.InputBytes))
	gauge("output_bytes", "Size of the written output.", float64(run.OutputBytes))
	gauge("run_duration_seconds", "Wall time of the pipeline run.", run.Duration.Seconds())
	gauge("last_success_timestamp_seconds", "Unix time the last run completed.", float64(run.Finished.Unix()))
	return reg
}

// WriteTextfile writes run gauges to path atomically.
func WriteTextfile(path string, run Run) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, Registry(run)); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
