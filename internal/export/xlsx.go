package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"chamberpivot/internal/fileutil"
	"chamberpivot/internal/frame"
)

// XLSXWriter writes a single-sheet workbook. Numeric cells stay numeric so
// spreadsheets can chart them directly.
type XLSXWriter struct {
	IndexColumn string
	Sheet       string
}

// Write implements Writer.
func (x XLSXWriter) Write(path string, w *frame.Wide) error {
	sheet := x.Sheet
	if sheet == "" {
		sheet = "data"
	}

	f := excelize.NewFile()
	defer f.Close()

	if defaultSheet := f.GetSheetName(0); defaultSheet != sheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]any, 0, len(w.Columns)+1)
	header = append(header, x.IndexColumn)
	for _, name := range w.Columns {
		header = append(header, name)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i := 0; i < w.Len(); i++ {
		row := make([]any, 0, len(w.Columns)+1)
		row = append(row, w.Index[i].Format(TimestampLayout))
		for _, cell := range w.Row(i) {
			row = append(row, xlsxValue(cell))
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	return fileutil.WriteAtomic(path, func(out io.Writer) error {
		if _, err := f.WriteTo(out); err != nil {
			return fmt.Errorf("save workbook: %w", err)
		}
		return nil
	})
}

func xlsxValue(c frame.Cell) any {
	if v, ok := c.Float(); ok {
		return v
	}
	if c.IsMissing() {
		return nil
	}
	return c.String()
}
