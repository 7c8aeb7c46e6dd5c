package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chamberpivot/internal/failure"
	"chamberpivot/internal/testsupport"
)

const (
	t1 = "May 12, 2023 at 1:15 PM"
	t2 = "May 12, 2023 at 1:16 PM"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// user configuration leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestUsageExitCodes(t *testing.T) {
	dir := isolate(t)
	existing := testsupport.WriteUTF8Export(t, filepath.Join(dir, "temps.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "10"},
	)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"bare without file", []string{}, failure.ExitArgument},
		{"bare wrong extension", []string{"data.txt"}, failure.ExitExtension},
		{"bare missing file", []string{"missing.csv"}, failure.ExitNotFound},
		{"bare missing setpoints", []string{existing, "missing.csv"}, failure.ExitNotFound},
		{"pivot without file", []string{"pivot"}, failure.ExitArgument},
		{"pivot too many arguments", []string{"pivot", existing, existing}, failure.ExitArgument},
		{"pivot wrong extension", []string{"pivot", "data.txt"}, failure.ExitExtension},
		{"pivot missing file", []string{"pivot", "missing.csv"}, failure.ExitNotFound},
		{"merge without files", []string{"merge"}, failure.ExitArgument},
		{"merge without setpoints", []string{"merge", existing}, failure.ExitArgument},
		{"merge wrong second extension", []string{"merge", existing, "sp.txt"}, failure.ExitExtension},
		{"merge extension checked before existence", []string{"merge", "missing.csv", "sp.txt"}, failure.ExitExtension},
		{"merge missing setpoints", []string{"merge", existing, "missing.csv"}, failure.ExitNotFound},
		{"merge too many arguments", []string{"merge", existing, existing, "out.csv", "extra"}, failure.ExitArgument},
		{"unknown flag", []string{"pivot", "--bogus"}, failure.ExitArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != tt.want {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tt.want, stderr)
			}
			requireContains(t, stderr, "Error:")
		})
	}
}

func TestBareInvocationPrintsUsage(t *testing.T) {
	isolate(t)
	code, stdout, stderr := runCLI(t)
	if code != failure.ExitArgument {
		t.Fatalf("exit code = %d, want %d", code, failure.ExitArgument)
	}
	requireContains(t, stderr, "Usage:")
	requireContains(t, stderr, "no input file given")
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
}

func TestBareInvocationPivotsOneFile(t *testing.T) {
	dir := isolate(t)
	input := testsupport.WriteUTF16Export(t, filepath.Join(dir, "temps.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "10"},
		testsupport.Row{When: t1, Chamber: "tr_03", Value: "12"},
		testsupport.Row{When: t2, Chamber: "tr_02", Value: "11"},
	)

	code, stdout, stderr := runCLI(t, input)
	if code != failure.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	if err != nil {
		t.Fatalf("read out.csv: %v", err)
	}
	want := "Minute of Date And Time,tr_02,tr_03\n2023-05-12 13:15:00,10,12\n"
	if string(data) != want {
		t.Fatalf("out.csv = %q, want %q", data, want)
	}
	requireContains(t, stdout, "pivot")
}

func TestExtensionCheckIsCaseInsensitive(t *testing.T) {
	dir := isolate(t)
	input := testsupport.WriteUTF16Export(t, filepath.Join(dir, "TEMPS.CSV"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "10"},
	)
	code, _, stderr := runCLI(t, "pivot", input)
	if code != failure.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
}

func TestPivotCommand(t *testing.T) {
	dir := isolate(t)
	input := testsupport.WriteUTF16Export(t, filepath.Join(dir, "temps.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "10"},
		testsupport.Row{When: t1, Chamber: "tr_03", Value: "12"},
		testsupport.Row{When: t2, Chamber: "tr_02", Value: "11"},
	)
	output := filepath.Join(dir, "wide.csv")

	code, stdout, stderr := runCLI(t, "--log-format", "json", "pivot", input, "--output", output)
	if code != failure.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "Minute of Date And Time,tr_02,tr_03\n2023-05-12 13:15:00,10,12\n"
	if string(data) != want {
		t.Fatalf("output = %q, want %q", data, want)
	}

	requireContains(t, stdout, "50.00%")
	requireContains(t, stdout, "tr_02, tr_03")
	requireContains(t, stdout, "utf-16le, tab separated")
	requireContains(t, stderr, `"msg":"stage completed"`)
}

func TestMergeCommandDefaultsToOutCSV(t *testing.T) {
	dir := isolate(t)
	testsupport.WriteUTF16Export(t, filepath.Join(dir, "temps.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "20"},
		testsupport.Row{When: t2, Chamber: "tr_02", Value: "21"},
	)
	testsupport.WriteUTF8Export(t, filepath.Join(dir, "setpoints.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "20"},
		testsupport.Row{When: t1, Chamber: "tr_04", Value: "23.5"},
	)
	testsupport.WriteUTF16Export(t, filepath.Join(dir, "day_night.csv"),
		testsupport.Row{When: t1, Chamber: "light", Value: "day"},
	)

	code, stdout, stderr := runCLI(t, "--log-level", "error", "merge", "temps.csv", "setpoints.csv")
	if code != failure.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	if strings.Contains(stderr, "stage started") {
		t.Fatalf("expected info logs suppressed, got %q", stderr)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	if err != nil {
		t.Fatalf("read out.csv: %v", err)
	}
	want := "Minute of Date And Time,tr_02,asym_sp,day_night\n" +
		"2023-05-12 13:15:00,20,3.5,day\n" +
		"2023-05-12 13:16:00,21,,\n"
	if string(data) != want {
		t.Fatalf("out.csv = %q, want %q", data, want)
	}
	requireContains(t, stdout, "merge")
	requireContains(t, stdout, "0.00%")
}

func TestMergeCommandWritesXLSX(t *testing.T) {
	dir := isolate(t)
	temps := testsupport.WriteUTF16Export(t, filepath.Join(dir, "temps.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "20"},
	)
	setpoints := testsupport.WriteUTF8Export(t, filepath.Join(dir, "setpoints.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "20"},
		testsupport.Row{When: t1, Chamber: "tr_04", Value: "22"},
	)
	dayNight := testsupport.WriteUTF16Export(t, filepath.Join(dir, "labels", "dn.csv"),
		testsupport.Row{When: t1, Chamber: "light", Value: "night"},
	)
	output := filepath.Join(dir, "merged.xlsx")

	code, stdout, stderr := runCLI(t, "merge", temps, setpoints, output, "--day-night", dayNight)
	if code != failure.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		t.Fatalf("expected xlsx output, stat err = %v", err)
	}
	requireContains(t, stdout, "(xlsx)")
}

func TestPipelineFailureExitCode(t *testing.T) {
	dir := isolate(t)
	input := testsupport.WriteUTF8Export(t, filepath.Join(dir, "temps.csv"))

	code, _, stderr := runCLI(t, "pivot", input)
	if code != failure.ExitPipeline {
		t.Fatalf("exit code = %d, want %d (stderr %q)", code, failure.ExitPipeline, stderr)
	}
	requireContains(t, stderr, "empty input")
	if _, err := os.Stat(filepath.Join(dir, "out.csv")); !os.IsNotExist(err) {
		t.Fatalf("out.csv should not exist, stat err = %v", err)
	}
}

func TestMetricsFileFlag(t *testing.T) {
	dir := isolate(t)
	input := testsupport.WriteUTF8Export(t, filepath.Join(dir, "temps.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "10"},
	)
	metricsPath := filepath.Join(dir, "textfile", "chamberpivot.prom")

	code, _, stderr := runCLI(t, "--metrics-file", metricsPath, "pivot", input)
	if code != failure.ExitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	requireContains(t, string(data), "chamberpivot_rows_after_filter")
}

func TestInvalidLogFormatFlag(t *testing.T) {
	dir := isolate(t)
	input := testsupport.WriteUTF8Export(t, filepath.Join(dir, "temps.csv"),
		testsupport.Row{When: t1, Chamber: "tr_02", Value: "10"},
	)
	code, _, stderr := runCLI(t, "--log-format", "xml", "pivot", input)
	if code != failure.ExitArgument {
		t.Fatalf("exit code = %d, want %d (stderr %q)", code, failure.ExitArgument, stderr)
	}
	requireContains(t, stderr, "invalid flags")
}
