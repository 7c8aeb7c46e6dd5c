package frame

import (
	"math"
	"strconv"
)

type cellKind uint8

const (
	kindMissing cellKind = iota
	kindNumber
	kindText
)

// Cell is one value of a table: a number, a text label, or missing.
type Cell struct {
	kind cellKind
	num  float64
	text string
}

// Number returns a numeric cell. NaN is treated as missing.
func Number(v float64) Cell {
	if math.IsNaN(v) {
		return Missing()
	}
	return Cell{kind: kindNumber, num: v}
}

// Text returns a label cell. The empty string is treated as missing.
func Text(v string) Cell {
	if v == "" {
		return Missing()
	}
	return Cell{kind: kindText, text: v}
}

// Missing returns an empty cell.
func Missing() Cell { return Cell{} }

func (c Cell) IsMissing() bool { return c.kind == kindMissing }

func (c Cell) IsNumber() bool { return c.kind == kindNumber }

func (c Cell) IsText() bool { return c.kind == kindText }

// Float returns the numeric value and whether the cell holds one.
func (c Cell) Float() (float64, bool) {
	if c.kind != kindNumber {
		return math.NaN(), false
	}
	return c.num, true
}

// String renders the cell for delimited output; missing cells render empty.
func (c Cell) String() string {
	switch c.kind {
	case kindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case kindText:
		return c.text
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and value.
func (c Cell) Equal(other Cell) bool {
	return c.kind == other.kind && c.num == other.num && c.text == other.text
}
