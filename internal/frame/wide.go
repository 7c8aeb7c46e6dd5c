package frame

import (
	"fmt"
	"slices"
	"time"

	"chamberpivot/internal/failure"
)

// Observation is one long-form row.
type Observation struct {
	Time    time.Time
	Chamber string
	Value   Cell
}

// Wide is a timestamp-indexed table with one column per chamber or derived
// field. Index is strictly ascending.
type Wide struct {
	Index   []time.Time
	Columns []string
	rows    [][]Cell
}

// NewWide builds a table from parallel index and row slices. Each row must
// hold exactly len(columns) cells.
func NewWide(index []time.Time, columns []string, rows [][]Cell) (*Wide, error) {
	if len(index) != len(rows) {
		return nil, fmt.Errorf("wide table: %d index entries for %d rows", len(index), len(rows))
	}
	seen := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		if _, dup := seen[name]; dup {
			return nil, failure.Wrap(failure.ErrSchema, "frame", "build table", fmt.Sprintf("duplicate column %q", name), nil)
		}
		seen[name] = struct{}{}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("wide table: row %d has %d cells, want %d", i, len(row), len(columns))
		}
		if i > 0 && !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("wide table: index not strictly ascending at row %d", i)
		}
	}
	return &Wide{Index: index, Columns: columns, rows: rows}, nil
}

// Len returns the number of rows.
func (w *Wide) Len() int { return len(w.Index) }

// ColumnIndex returns the position of the named column.
func (w *Wide) ColumnIndex(name string) (int, bool) {
	i := slices.Index(w.Columns, name)
	return i, i >= 0
}

// HasColumn reports whether the named column exists.
func (w *Wide) HasColumn(name string) bool {
	_, ok := w.ColumnIndex(name)
	return ok
}

// Row returns the cells of row i in column order. The slice must not be modified.
func (w *Wide) Row(i int) []Cell { return w.rows[i] }

// At returns the cell at row i of the named column, or a missing cell when
// the column does not exist.
func (w *Wide) At(i int, column string) Cell {
	j, ok := w.ColumnIndex(column)
	if !ok {
		return Missing()
	}
	return w.rows[i][j]
}

// Lookup returns the row position of timestamp t.
func (w *Wide) Lookup(t time.Time) (int, bool) {
	return slices.BinarySearchFunc(w.Index, t, func(a, b time.Time) int { return a.Compare(b) })
}

// Select returns a table restricted to the named columns in the given order.
func (w *Wide) Select(names ...string) (*Wide, error) {
	positions := make([]int, len(names))
	for k, name := range names {
		j, ok := w.ColumnIndex(name)
		if !ok {
			return nil, failure.Wrap(failure.ErrMissingColumn, "frame", "select", fmt.Sprintf("column %q not present", name), nil)
		}
		positions[k] = j
	}
	rows := make([][]Cell, len(w.rows))
	for i, row := range w.rows {
		out := make([]Cell, len(positions))
		for k, j := range positions {
			out[k] = row[j]
		}
		rows[i] = out
	}
	return &Wide{Index: slices.Clone(w.Index), Columns: slices.Clone(names), rows: rows}, nil
}

// Rename returns a copy with column old renamed to name.
func (w *Wide) Rename(old, name string) (*Wide, error) {
	j, ok := w.ColumnIndex(old)
	if !ok {
		return nil, failure.Wrap(failure.ErrMissingColumn, "frame", "rename", fmt.Sprintf("column %q not present", old), nil)
	}
	if old != name && w.HasColumn(name) {
		return nil, failure.Wrap(failure.ErrSchema, "frame", "rename", fmt.Sprintf("column %q already present", name), nil)
	}
	columns := slices.Clone(w.Columns)
	columns[j] = name
	return &Wide{Index: slices.Clone(w.Index), Columns: columns, rows: cloneRows(w.rows)}, nil
}

func (w *Wide) keepRows(keep func(row []Cell) bool) *Wide {
	index := make([]time.Time, 0, len(w.Index))
	rows := make([][]Cell, 0, len(w.rows))
	for i, row := range w.rows {
		if keep(row) {
			index = append(index, w.Index[i])
			rows = append(rows, slices.Clone(row))
		}
	}
	return &Wide{Index: index, Columns: slices.Clone(w.Columns), rows: rows}
}

func cloneRows(rows [][]Cell) [][]Cell {
	out := make([][]Cell, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}
