package frame

import (
	"fmt"
	"slices"
	"time"

	"chamberpivot/internal/failure"
)

// DuplicatePolicy decides what happens when the long form holds more than one
// value for the same (timestamp, chamber) pair.
type DuplicatePolicy int

const (
	// DuplicateMean averages numeric duplicates. Text duplicates keep the
	// last value.
	DuplicateMean DuplicatePolicy = iota
	// DuplicateLast keeps the last observation in input order.
	DuplicateLast
	// DuplicateError fails on the first duplicate.
	DuplicateError
)

// ParseDuplicatePolicy maps a configuration name to a policy.
func ParseDuplicatePolicy(name string) (DuplicatePolicy, error) {
	switch name {
	case "mean", "":
		return DuplicateMean, nil
	case "last":
		return DuplicateLast, nil
	case "error":
		return DuplicateError, nil
	default:
		return 0, failure.Wrap(failure.ErrConfiguration, "pivot", "", fmt.Sprintf("unknown duplicate policy %q", name), nil)
	}
}

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateLast:
		return "last"
	case DuplicateError:
		return "error"
	default:
		return "mean"
	}
}

type cellKey struct {
	row, col int
}

type accumulator struct {
	cell  Cell
	sum   float64
	count int
}

// Pivot reshapes long-form observations into a wide table. Missing
// observations contribute their timestamp and chamber but never overwrite a
// present value.
func Pivot(obs []Observation, policy DuplicatePolicy) (*Wide, error) {
	index := make([]time.Time, 0)
	columns := make([]string, 0)
	seenTime := make(map[time.Time]struct{})
	seenColumn := make(map[string]struct{})
	for _, o := range obs {
		t := o.Time.UTC()
		if _, ok := seenTime[t]; !ok {
			seenTime[t] = struct{}{}
			index = append(index, t)
		}
		if _, ok := seenColumn[o.Chamber]; !ok {
			seenColumn[o.Chamber] = struct{}{}
			columns = append(columns, o.Chamber)
		}
	}
	slices.SortFunc(index, func(a, b time.Time) int { return a.Compare(b) })
	slices.Sort(columns)

	rowOf := make(map[time.Time]int, len(index))
	for i, t := range index {
		rowOf[t] = i
	}
	colOf := make(map[string]int, len(columns))
	for j, c := range columns {
		colOf[c] = j
	}

	acc := make(map[cellKey]*accumulator)
	for _, o := range obs {
		if o.Value.IsMissing() {
			continue
		}
		key := cellKey{row: rowOf[o.Time.UTC()], col: colOf[o.Chamber]}
		a, exists := acc[key]
		if !exists {
			a = &accumulator{cell: o.Value}
			if v, ok := o.Value.Float(); ok {
				a.sum, a.count = v, 1
			}
			acc[key] = a
			continue
		}
		if a.cell.kind != o.Value.kind {
			return nil, failure.Wrap(failure.ErrSchema, "pivot", "",
				fmt.Sprintf("chamber %q at %s mixes numeric and text values", o.Chamber, o.Time.Format(time.RFC3339)), nil)
		}
		switch policy {
		case DuplicateError:
			return nil, failure.Wrap(failure.ErrDuplicate, "pivot", "",
				fmt.Sprintf("chamber %q has more than one value at %s", o.Chamber, o.Time.Format(time.RFC3339)), nil)
		case DuplicateLast:
			a.cell = o.Value
		default:
			if v, ok := o.Value.Float(); ok {
				a.sum += v
				a.count++
				a.cell = Number(a.sum / float64(a.count))
			} else {
				a.cell = o.Value
			}
		}
	}

	rows := make([][]Cell, len(index))
	for i := range rows {
		rows[i] = make([]Cell, len(columns))
	}
	for key, a := range acc {
		rows[key.row][key.col] = a.cell
	}
	return &Wide{Index: index, Columns: columns, rows: rows}, nil
}

// Melt is the inverse of Pivot: it emits one observation per present cell,
// ordered by timestamp then column.
func Melt(w *Wide) []Observation {
	out := make([]Observation, 0, w.Len()*len(w.Columns))
	for i, row := range w.rows {
		for j, cell := range row {
			if cell.IsMissing() {
				continue
			}
			out = append(out, Observation{Time: w.Index[i], Chamber: w.Columns[j], Value: cell})
		}
	}
	return out
}
