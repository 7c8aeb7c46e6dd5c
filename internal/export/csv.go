package export

import (
	"encoding/csv"
	"io"

	"chamberpivot/internal/fileutil"
	"chamberpivot/internal/frame"
)

// CSVWriter writes comma-separated text with a header row.
type CSVWriter struct {
	IndexColumn string
}

// Write implements Writer.
func (c CSVWriter) Write(path string, w *frame.Wide) error {
	return fileutil.WriteAtomic(path, func(out io.Writer) error {
		return c.Encode(out, w)
	})
}

// Encode writes the table to out.
func (c CSVWriter) Encode(out io.Writer, w *frame.Wide) error {
	cw := csv.NewWriter(out)
	header := make([]string, 0, len(w.Columns)+1)
	header = append(header, c.IndexColumn)
	header = append(header, w.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i := 0; i < w.Len(); i++ {
		record[0] = w.Index[i].Format(TimestampLayout)
		for j, cell := range w.Row(i) {
			record[j+1] = cell.String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
