package ingest

import "strings"

// DelimiterDetector picks the field separator from the first decoded line.
type DelimiterDetector interface {
	Delimiter(firstLine string) rune
}

// FirstLineDelimiter chooses a comma when the header contains one and a tab
// otherwise, matching Tableau's tab-separated crosstab exports.
type FirstLineDelimiter struct{}

// Delimiter implements DelimiterDetector.
func (FirstLineDelimiter) Delimiter(firstLine string) rune {
	if strings.ContainsRune(firstLine, ',') {
		return ','
	}
	return '\t'
}

// FixedDelimiter always returns the same separator.
type FixedDelimiter rune

// Delimiter implements DelimiterDetector.
func (f FixedDelimiter) Delimiter(string) rune { return rune(f) }

func delimiterName(r rune) string {
	switch r {
	case ',':
		return "comma"
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	default:
		return string(r)
	}
}
