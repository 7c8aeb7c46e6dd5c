package frame

import (
	"fmt"
	"math"
	"slices"

	"chamberpivot/internal/failure"
)

// DropColumns returns a table without the named columns together with the
// names that were not present. Absent names are not an error.
func (w *Wide) DropColumns(names ...string) (*Wide, []string) {
	drop := make(map[string]struct{}, len(names))
	var absent []string
	for _, name := range names {
		if !w.HasColumn(name) {
			if !slices.Contains(absent, name) {
				absent = append(absent, name)
			}
			continue
		}
		drop[name] = struct{}{}
	}

	keep := make([]string, 0, len(w.Columns))
	for _, name := range w.Columns {
		if _, ok := drop[name]; !ok {
			keep = append(keep, name)
		}
	}
	out, _ := w.Select(keep...)
	return out, absent
}

// DropIncomplete keeps only rows where every column holds a value.
func (w *Wide) DropIncomplete() *Wide {
	return w.keepRows(func(row []Cell) bool {
		for _, c := range row {
			if c.IsMissing() {
				return false
			}
		}
		return true
	})
}

// DropMissing keeps only rows where the named column holds a value.
func (w *Wide) DropMissing(column string) (*Wide, error) {
	j, ok := w.ColumnIndex(column)
	if !ok {
		return nil, failure.Wrap(failure.ErrMissingColumn, "filter", "anchor", fmt.Sprintf("column %q not present", column), nil)
	}
	return w.keepRows(func(row []Cell) bool { return !row[j].IsMissing() }), nil
}

// LossFraction reports the share of rows removed by a filter, in [0, 1].
func LossFraction(before, after int) (float64, error) {
	if before == 0 {
		return 0, failure.Wrap(failure.ErrEmptyInput, "filter", "loss", "no rows before filtering", nil)
	}
	return math.Abs(float64(after-before)) / float64(before), nil
}
