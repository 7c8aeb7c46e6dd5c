package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chamberpivot/internal/metrics"
)

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textfile", "chamberpivot.prom")
	run := metrics.Run{
		Mode:        "merge",
		RowsBefore:  4,
		RowsAfter:   3,
		LossRatio:   0.25,
		InputBytes:  2048,
		OutputBytes: 512,
		Duration:    1500 * time.Millisecond,
		Finished:    time.Unix(1700000000, 0),
	}
	if err := metrics.WriteTextfile(path, run); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, fragment := range []string{
		`chamberpivot_rows_before_filter{mode="merge"} 4`,
		`chamberpivot_rows_dropped_ratio{mode="merge"} 0.25`,
		`chamberpivot_run_duration_seconds{mode="merge"} 1.5`,
		`chamberpivot_last_success_timestamp_seconds{mode="merge"} 1.7e+09`,
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in:\n%s", fragment, text)
		}
	}
}

func TestWriteTextfileDisabled(t *testing.T) {
	if err := metrics.WriteTextfile("", metrics.Run{}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
