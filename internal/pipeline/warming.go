package pipeline

import (
	"gonum.org/v1/gonum/stat"

	"chamberpivot/internal/frame"
)

// WarmingCheck compares the observed symmetric-over-ambient warming with the
// configured target.
type WarmingCheck struct {
	Target   float64
	Observed float64
	Rows     int
}

// Deviation is Observed minus Target.
func (w WarmingCheck) Deviation() float64 { return w.Observed - w.Target }

// checkWarming averages, over every row holding at least one ambient and one
// symmetric reading, mean(symmetric) - mean(ambient).
func checkWarming(w *frame.Wide, ambient, symmetric []string, target float64) (WarmingCheck, bool) {
	var diffs []float64
	amb := make([]float64, 0, len(ambient))
	sym := make([]float64, 0, len(symmetric))
	for i := 0; i < w.Len(); i++ {
		amb = collect(amb[:0], w, i, ambient)
		sym = collect(sym[:0], w, i, symmetric)
		if len(amb) == 0 || len(sym) == 0 {
			continue
		}
		diffs = append(diffs, stat.Mean(sym, nil)-stat.Mean(amb, nil))
	}
	if len(diffs) == 0 {
		return WarmingCheck{}, false
	}
	return WarmingCheck{
		Target:   target,
		Observed: frame.Round(stat.Mean(diffs, nil), 2),
		Rows:     len(diffs),
	}, true
}

func collect(dst []float64, w *frame.Wide, row int, columns []string) []float64 {
	for _, name := range columns {
		if v, ok := w.At(row, name).Float(); ok {
			dst = append(dst, v)
		}
	}
	return dst
}
