package frame

import (
	"fmt"
	"math"
	"slices"

	"chamberpivot/internal/failure"
)

// Derive appends column name = round(minuend - subtrahend, places). The result
// is missing whenever either operand is missing or non-numeric.
func (w *Wide) Derive(name, minuend, subtrahend string, places int) (*Wide, error) {
	a, ok := w.ColumnIndex(minuend)
	if !ok {
		return nil, failure.Wrap(failure.ErrMissingColumn, "derive", name, fmt.Sprintf("column %q not present", minuend), nil)
	}
	b, ok := w.ColumnIndex(subtrahend)
	if !ok {
		return nil, failure.Wrap(failure.ErrMissingColumn, "derive", name, fmt.Sprintf("column %q not present", subtrahend), nil)
	}
	if w.HasColumn(name) {
		return nil, failure.Wrap(failure.ErrSchema, "derive", name, "column already present", nil)
	}

	rows := make([][]Cell, len(w.rows))
	for i, row := range w.rows {
		out := make([]Cell, len(row), len(row)+1)
		copy(out, row)
		x, okA := row[a].Float()
		y, okB := row[b].Float()
		if okA && okB {
			out = append(out, Number(Round(x-y, places)))
		} else {
			out = append(out, Missing())
		}
		rows[i] = out
	}
	columns := append(slices.Clone(w.Columns), name)
	return &Wide{Index: slices.Clone(w.Index), Columns: columns, rows: rows}, nil
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Coalesce collapses every column into one named column holding the first
// present cell of each row, scanning columns left to right.
func (w *Wide) Coalesce(name string) *Wide {
	rows := make([][]Cell, len(w.rows))
	for i, row := range w.rows {
		cell := Missing()
		for _, c := range row {
			if !c.IsMissing() {
				cell = c
				break
			}
		}
		rows[i] = []Cell{cell}
	}
	return &Wide{Index: slices.Clone(w.Index), Columns: []string{name}, rows: rows}
}

// LeftJoin appends the columns of aux to primary, matching rows on timestamp
// equality. The primary index is preserved exactly; rows without a match get
// missing cells. Column names must not collide.
func LeftJoin(primary, aux *Wide) (*Wide, error) {
	for _, name := range aux.Columns {
		if primary.HasColumn(name) {
			return nil, failure.Wrap(failure.ErrSchema, "merge", "join", fmt.Sprintf("column %q present in both tables", name), nil)
		}
	}
	width := len(primary.Columns) + len(aux.Columns)
	rows := make([][]Cell, len(primary.rows))
	for i, row := range primary.rows {
		out := make([]Cell, len(row), width)
		copy(out, row)
		if k, ok := aux.Lookup(primary.Index[i]); ok {
			out = append(out, aux.rows[k]...)
		} else {
			out = append(out, make([]Cell, len(aux.Columns))...)
		}
		rows[i] = out
	}
	columns := append(slices.Clone(primary.Columns), aux.Columns...)
	return &Wide{Index: slices.Clone(primary.Index), Columns: columns, rows: rows}, nil
}
