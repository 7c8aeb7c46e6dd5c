package ingest_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"chamberpivot/internal/config"
	"chamberpivot/internal/failure"
	"chamberpivot/internal/ingest"
	"chamberpivot/internal/testsupport"
)

var sampleRows = []testsupport.Row{
	{When: "March 5, 2024 at 2:30 PM", Chamber: "tr_02", Value: "10.5"},
	{When: "March 5, 2024 at 2:30 PM", Chamber: "tr_03", Value: "12"},
	{When: "March 5, 2024 at 2:31 PM", Chamber: "tr_02", Value: ""},
}

func defaultOptions() ingest.Options {
	return ingest.OptionsFromConfig(config.Default().Input)
}

func TestLoadUTF16TabExport(t *testing.T) {
	path := testsupport.WriteUTF16Export(t, filepath.Join(t.TempDir(), "temps.csv"), sampleRows...)

	src, err := ingest.Load(path, defaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Encoding != "utf-16le" {
		t.Fatalf("expected utf-16le, got %q", src.Encoding)
	}
	if src.Delimiter != '\t' || src.DelimiterName() != "tab" {
		t.Fatalf("expected tab delimiter, got %q", src.Delimiter)
	}
	if len(src.Observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(src.Observations))
	}
	first := src.Observations[0]
	want := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	if !first.Time.Equal(want) || first.Chamber != "tr_02" {
		t.Fatalf("unexpected first observation %+v", first)
	}
	if v, ok := first.Value.Float(); !ok || v != 10.5 {
		t.Fatalf("unexpected first value %q", first.Value.String())
	}
	if !src.Observations[2].Value.IsMissing() {
		t.Fatal("expected empty value to load as missing")
	}
	if src.Size <= 0 {
		t.Fatal("expected file size to be recorded")
	}
}

func TestLoadUTF8CommaExport(t *testing.T) {
	path := testsupport.WriteUTF8Export(t, filepath.Join(t.TempDir(), "temps.csv"), sampleRows...)

	src, err := ingest.Load(path, defaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Encoding != "utf-8" || src.Delimiter != ',' || src.Guessed {
		t.Fatalf("unexpected detection: %s %q guessed=%v", src.Encoding, src.Delimiter, src.Guessed)
	}
	if len(src.Observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(src.Observations))
	}
}

func TestLoadTabExportStripsThousandsSeparators(t *testing.T) {
	text := testsupport.ExportText("\t",
		testsupport.Row{When: "March 5, 2024 at 2:30 PM", Chamber: "tr_02", Value: "1,024.5"},
		testsupport.Row{When: "March 5, 2024 at 2:30 PM", Chamber: "label", Value: "Night"},
	)
	path := testsupport.WriteText(t, filepath.Join(t.TempDir(), "temps.csv"), text)

	src, err := ingest.Load(path, defaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, ok := src.Observations[0].Value.Float(); !ok || v != 1024.5 {
		t.Fatalf("expected 1024.5, got %q", src.Observations[0].Value.String())
	}
	if got := src.Observations[1].Value; !got.IsText() || got.String() != "Night" {
		t.Fatalf("expected text label, got %q", got.String())
	}
}

func TestLoadCommaExportStripsQuotedThousandsSeparators(t *testing.T) {
	text := "Minute of Date And Time,Chamber,Filtered Values\r\n" +
		"\"March 5, 2024 at 2:30 PM\",tr_02,\"1,234.5\"\r\n" +
		"\"March 5, 2024 at 2:30 PM\",label,\"day, late\"\r\n"
	path := testsupport.WriteText(t, filepath.Join(t.TempDir(), "temps.csv"), text)

	src, err := ingest.Load(path, defaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Delimiter != ',' {
		t.Fatalf("expected comma delimiter, got %q", src.Delimiter)
	}
	if v, ok := src.Observations[0].Value.Float(); !ok || v != 1234.5 {
		t.Fatalf("expected 1234.5, got %q", src.Observations[0].Value.String())
	}
	if got := src.Observations[1].Value; !got.IsText() || got.String() != "day, late" {
		t.Fatalf("expected text label, got %q", got.String())
	}
}

func TestLoadWindows1252IsFlaggedAsGuess(t *testing.T) {
	text := testsupport.ExportText("\t",
		testsupport.Row{When: "March 5, 2024 at 2:30 PM", Chamber: "tr_02", Value: "21.5"},
		testsupport.Row{When: "March 5, 2024 at 2:30 PM", Chamber: "note", Value: "22°C"},
	)
	path := testsupport.WriteEncoded(t, filepath.Join(t.TempDir(), "temps.csv"), charmap.Windows1252, text)

	src, err := ingest.Load(path, defaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Encoding != "windows-1252" || !src.Guessed {
		t.Fatalf("expected windows-1252 guess, got %s guessed=%v", src.Encoding, src.Guessed)
	}
	if got := src.Observations[1].Value.String(); got != "22°C" {
		t.Fatalf("expected decoded label, got %q", got)
	}
}

func TestLoadFixedEncoding(t *testing.T) {
	path := testsupport.WriteUTF16Export(t, filepath.Join(t.TempDir(), "day_night.csv"), sampleRows...)

	src, err := ingest.Load(path, defaultOptions().WithEncoding("utf-16"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Encoding != "utf-16" || len(src.Observations) != 3 {
		t.Fatalf("unexpected load: %s %d", src.Encoding, len(src.Observations))
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name   string
		setup  func() string
		opts   ingest.Options
		marker error
	}{
		{
			name:   "not found",
			setup:  func() string { return filepath.Join(dir, "missing.csv") },
			opts:   defaultOptions(),
			marker: failure.ErrNotFound,
		},
		{
			name:   "directory",
			setup:  func() string { return t.TempDir() },
			opts:   defaultOptions(),
			marker: failure.ErrRead,
		},
		{
			name: "missing column",
			setup: func() string {
				return testsupport.WriteText(t, filepath.Join(dir, "schema.csv"), "Minute of Date And Time,Chamber\n\"March 5, 2024 at 2:30 PM\",tr_02\n")
			},
			opts:   defaultOptions(),
			marker: failure.ErrSchema,
		},
		{
			name:   "empty file",
			setup:  func() string { return testsupport.WriteText(t, filepath.Join(dir, "empty.csv"), "") },
			opts:   defaultOptions(),
			marker: failure.ErrSchema,
		},
		{
			name: "bad timestamp",
			setup: func() string {
				return testsupport.WriteUTF8Export(t, filepath.Join(dir, "ts.csv"),
					testsupport.Row{When: "2024-03-05 14:30", Chamber: "tr_02", Value: "1"})
			},
			opts:   defaultOptions(),
			marker: failure.ErrParse,
		},
		{
			name: "short row",
			setup: func() string {
				return testsupport.WriteText(t, filepath.Join(dir, "short.csv"), "Minute of Date And Time\tChamber\tFiltered Values\nMarch 5, 2024 at 2:30 PM\ttr_02\n")
			},
			opts:   defaultOptions(),
			marker: failure.ErrParse,
		},
		{
			name: "binary",
			setup: func() string {
				return testsupport.WriteText(t, filepath.Join(dir, "binary.csv"), "\x00\x00\x00\x01\x02\x00\x00\x00abc")
			},
			opts:   defaultOptions(),
			marker: failure.ErrEncoding,
		},
		{
			name: "unknown fixed encoding",
			setup: func() string {
				return testsupport.WriteUTF8Export(t, filepath.Join(dir, "fixed.csv"), sampleRows...)
			},
			opts:   defaultOptions().WithEncoding("klingon"),
			marker: failure.ErrEncoding,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ingest.Load(tc.setup(), tc.opts)
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestParseErrorNamesLine(t *testing.T) {
	path := testsupport.WriteUTF16Export(t, filepath.Join(t.TempDir(), "temps.csv"),
		testsupport.Row{When: "March 5, 2024 at 2:30 PM", Chamber: "tr_02", Value: "1"},
		testsupport.Row{When: "March 5 2024 14:31", Chamber: "tr_02", Value: "2"},
	)
	_, err := ingest.Load(path, defaultOptions())
	if !errors.Is(err, failure.ErrParse) || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected parse error on line 3, got %v", err)
	}
}

func TestSniffDetector(t *testing.T) {
	le, _ := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte("Chamber\tValue"))
	be, _ := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte("Chamber\tValue"))
	// U+0100 encodes as 0x00 0x01 in little-endian, a NUL on the even side.
	leMixed, _ := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte("Chamber\t\u0100\tFiltered Values"))
	cases := []struct {
		name    string
		sample  []byte
		want    string
		guessed bool
	}{
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "utf-8", false},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'a', 0}, "utf-16le", false},
		{"utf-16be bom", []byte{0xFE, 0xFF, 0, 'a'}, "utf-16be", false},
		{"utf-16le no bom", le, "utf-16le", false},
		{"utf-16be no bom", be, "utf-16be", false},
		{"utf-16le no bom with U+0100", leMixed, "utf-16le", false},
		{"ascii", []byte("a,b,c"), "utf-8", false},
		{"utf-8 cut mid rune", []byte("temp \xc2\xb0C \xc2"), "utf-8", false},
		{"latin1", []byte("22\xb0C"), "windows-1252", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			det, err := ingest.SniffDetector{}.Detect(tc.sample)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if det.Name != tc.want || det.Guessed != tc.guessed {
				t.Fatalf("Detect = %s guessed=%v, want %s guessed=%v", det.Name, det.Guessed, tc.want, tc.guessed)
			}
		})
	}
}

func TestFirstLineDelimiter(t *testing.T) {
	var d ingest.FirstLineDelimiter
	if d.Delimiter("a,b") != ',' {
		t.Fatal("expected comma")
	}
	if d.Delimiter("a\tb") != '\t' {
		t.Fatal("expected tab")
	}
	if d.Delimiter("single") != '\t' {
		t.Fatal("expected tab fallback")
	}
	if ingest.FixedDelimiter(';').Delimiter("a,b") != ';' {
		t.Fatal("expected fixed delimiter")
	}
}
