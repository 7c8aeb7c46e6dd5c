package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ExportHeader is the header of a Tableau chamber export.
var ExportHeader = []string{"Minute of Date And Time", "Chamber", "Filtered Values"}

// Row is one long-form export line.
type Row struct {
	When    string
	Chamber string
	Value   string
}

// ExportText renders rows as delimited text with the standard header.
func ExportText(delim string, rows ...Row) string {
	var b strings.Builder
	b.WriteString(strings.Join(ExportHeader, delim))
	b.WriteString("\r\n")
	for _, r := range rows {
		b.WriteString(strings.Join([]string{r.When, r.Chamber, r.Value}, delim))
		b.WriteString("\r\n")
	}
	return b.String()
}

// WriteUTF16Export writes rows the way Tableau does: UTF-16LE with a BOM and
// tab separators.
func WriteUTF16Export(t testing.TB, path string, rows ...Row) string {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	return WriteEncoded(t, path, enc, ExportText("\t", rows...))
}

// WriteUTF8Export writes rows as a plain comma-separated UTF-8 file.
func WriteUTF8Export(t testing.TB, path string, rows ...Row) string {
	t.Helper()
	return WriteText(t, path, ExportText(",", quoteCommas(rows)...))
}

// WriteEncoded encodes text and writes it to path, creating parent directories.
func WriteEncoded(t testing.TB, path string, enc encoding.Encoding, text string) string {
	t.Helper()
	data, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	writeBytes(t, path, data)
	return path
}

// WriteText writes text to path as-is.
func WriteText(t testing.TB, path, text string) string {
	t.Helper()
	writeBytes(t, path, []byte(text))
	return path
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func quoteCommas(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		if strings.Contains(r.When, ",") {
			r.When = `"` + r.When + `"`
		}
		out[i] = r
	}
	return out
}
