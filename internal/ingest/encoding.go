package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"chamberpivot/internal/failure"
)

// DefaultSampleSize is the number of leading bytes inspected for detection.
const DefaultSampleSize = 10000

// utf16Dominance is how many times more NULs one byte parity must hold than
// the other for a BOM-less sample to count as UTF-16.
const utf16Dominance = 4

// Detection is the outcome of encoding detection.
type Detection struct {
	Name     string
	Encoding encoding.Encoding
	// Guessed is set when no rule matched and a fallback was chosen.
	Guessed bool
}

// EncodingDetector picks an encoding from the first bytes of a file.
type EncodingDetector interface {
	Detect(sample []byte) (Detection, error)
}

// SniffDetector recognizes byte order marks, BOM-less UTF-16 by NUL-byte
// parity, and valid UTF-8. Anything else decodes as Fallback and is flagged
// as a guess.
type SniffDetector struct {
	// Fallback defaults to Windows-1252.
	Fallback encoding.Encoding
	// FallbackName labels Fallback in Detection.Name.
	FallbackName string
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect implements EncodingDetector.
func (d SniffDetector) Detect(sample []byte) (Detection, error) {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return Detection{Name: "utf-8", Encoding: unicode.UTF8BOM}, nil
	case bytes.HasPrefix(sample, bomUTF16LE):
		return Detection{Name: "utf-16le", Encoding: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)}, nil
	case bytes.HasPrefix(sample, bomUTF16BE):
		return Detection{Name: "utf-16be", Encoding: unicode.UTF16(unicode.BigEndian, unicode.UseBOM)}, nil
	}

	if nulls := bytes.Count(sample, []byte{0}); nulls > 0 {
		even, odd := nulParity(sample)
		// ASCII text in UTF-16 has a NUL in every other byte. Code units such
		// as U+0100 put a NUL on the other side, so one side must dominate
		// rather than be empty.
		switch {
		case odd > utf16Dominance*even && odd*2 >= len(sample)/4:
			return Detection{Name: "utf-16le", Encoding: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)}, nil
		case even > utf16Dominance*odd && even*2 >= len(sample)/4:
			return Detection{Name: "utf-16be", Encoding: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}, nil
		default:
			return Detection{}, failure.Wrap(failure.ErrEncoding, "load", "detect encoding",
				fmt.Sprintf("sample holds %d NUL bytes that match no UTF-16 layout; input looks binary", nulls), nil)
		}
	}

	if utf8.Valid(trimPartialRune(sample)) {
		return Detection{Name: "utf-8", Encoding: unicode.UTF8}, nil
	}

	fallback, name := d.Fallback, d.FallbackName
	if fallback == nil {
		fallback, name = charmap.Windows1252, "windows-1252"
	}
	return Detection{Name: name, Encoding: fallback, Guessed: true}, nil
}

// FixedEncoding always reports the named encoding. Names are WHATWG labels
// such as "utf-16", "utf-8", or "windows-1252".
type FixedEncoding string

// Detect implements EncodingDetector. A leading BOM in the sample still wins
// over the byte order implied by the label.
func (f FixedEncoding) Detect(sample []byte) (Detection, error) {
	name := strings.ToLower(strings.TrimSpace(string(f)))
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Detection{}, failure.Wrap(failure.ErrEncoding, "load", "resolve encoding", fmt.Sprintf("unknown encoding %q", name), err)
	}
	if strings.HasPrefix(name, "utf-16") {
		order := unicode.LittleEndian
		if name == "utf-16be" {
			order = unicode.BigEndian
		}
		enc = unicode.UTF16(order, unicode.UseBOM)
	}
	if name == "utf-8" {
		enc = unicode.UTF8BOM
	}
	return Detection{Name: name, Encoding: enc}, nil
}

func nulParity(sample []byte) (even, odd int) {
	// Ignore a trailing odd byte so truncation cannot skew the counts.
	n := len(sample) &^ 1
	for i := 0; i < n; i++ {
		if sample[i] != 0 {
			continue
		}
		if i%2 == 0 {
			even++
		} else {
			odd++
		}
	}
	return even, odd
}

// trimPartialRune drops an incomplete multi-byte sequence cut off by the
// sample boundary.
func trimPartialRune(sample []byte) []byte {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(sample); i++ {
		b := sample[len(sample)-i]
		if b < utf8.RuneSelf {
			return sample
		}
		if utf8.RuneStart(b) {
			if !utf8.FullRune(sample[len(sample)-i:]) {
				return sample[:len(sample)-i]
			}
			return sample
		}
	}
	return sample
}
