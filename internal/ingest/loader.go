package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/transform"

	"chamberpivot/internal/config"
	"chamberpivot/internal/failure"
	"chamberpivot/internal/frame"
)

// Options describes the expected export layout and the detection strategies.
type Options struct {
	TimestampColumn string
	ChamberColumn   string
	ValueColumn     string
	TimestampLayout string
	Location        *time.Location
	SampleSize      int
	Encoding        EncodingDetector
	Delimiter       DelimiterDetector
}

// OptionsFromConfig builds loader options from the [input] section. An
// encoding other than "auto" pins the decoder.
func OptionsFromConfig(in config.Input) Options {
	opts := Options{
		TimestampColumn: in.TimestampColumn,
		ChamberColumn:   in.ChamberColumn,
		ValueColumn:     in.ValueColumn,
		TimestampLayout: in.TimestampLayout,
		SampleSize:      in.SampleBytes,
	}
	if in.Encoding != "" && in.Encoding != config.EncodingAuto {
		opts.Encoding = FixedEncoding(in.Encoding)
	}
	return opts
}

// WithEncoding returns a copy of opts using the named fixed encoding.
func (o Options) WithEncoding(name string) Options {
	if name != "" && name != config.EncodingAuto {
		o.Encoding = FixedEncoding(name)
	}
	return o
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.Encoding == nil {
		o.Encoding = SniffDetector{}
	}
	if o.Delimiter == nil {
		o.Delimiter = FirstLineDelimiter{}
	}
	return o
}

// Source is a loaded long-form export.
type Source struct {
	Path         string
	Size         int64
	Encoding     string
	Guessed      bool
	Delimiter    rune
	Observations []frame.Observation
}

// DelimiterName returns a readable label for the detected separator.
func (s *Source) DelimiterName() string { return delimiterName(s.Delimiter) }

// Load reads the file at path into observations. The whole file is held in
// memory.
func Load(path string, opts Options) (*Source, error) {
	opts = opts.withDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.Wrap(failure.ErrNotFound, "load", path, "", err)
		}
		return nil, failure.Wrap(failure.ErrRead, "load", path, "unreadable", err)
	}

	sample := data[:min(len(data), opts.SampleSize)]
	det, err := opts.Encoding.Detect(sample)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	decoded, _, err := transform.Bytes(det.Encoding.NewDecoder(), data)
	if err != nil {
		return nil, failure.Wrap(failure.ErrEncoding, "load", path, fmt.Sprintf("decode as %s", det.Name), err)
	}
	text := strings.TrimPrefix(string(decoded), "\ufeff")

	delim := opts.Delimiter.Delimiter(firstLine(text))
	obs, err := parse(text, delim, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Source{
		Path:         path,
		Size:         int64(len(data)),
		Encoding:     det.Name,
		Guessed:      det.Guessed,
		Delimiter:    delim,
		Observations: obs,
	}, nil
}

func parse(text string, delim rune, opts Options) ([]frame.Observation, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, failure.Wrap(failure.ErrSchema, "load", "read header", "file is empty", nil)
		}
		return nil, failure.Wrap(failure.ErrSchema, "load", "read header", "", err)
	}

	positions, err := locateColumns(header, opts.TimestampColumn, opts.ChamberColumn, opts.ValueColumn)
	if err != nil {
		return nil, err
	}
	ti, ci, vi := positions[0], positions[1], positions[2]
	need := max(ti, ci, vi) + 1

	var obs []frame.Observation
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, failure.Wrap(failure.ErrParse, "load", "read row", "", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		line, _ := r.FieldPos(0)
		if len(rec) < need {
			return nil, failure.Wrap(failure.ErrParse, "load", "read row",
				fmt.Sprintf("line %d has %d fields, want at least %d", line, len(rec), need), nil)
		}

		rawTime := strings.TrimSpace(rec[ti])
		ts, err := time.ParseInLocation(opts.TimestampLayout, rawTime, opts.Location)
		if err != nil {
			return nil, failure.Wrap(failure.ErrParse, "load", "parse timestamp",
				fmt.Sprintf("line %d: %q does not match %q", line, rawTime, opts.TimestampLayout), err)
		}
		chamber := strings.TrimSpace(rec[ci])
		if chamber == "" {
			return nil, failure.Wrap(failure.ErrParse, "load", "read row", fmt.Sprintf("line %d has an empty %s", line, opts.ChamberColumn), nil)
		}
		obs = append(obs, frame.Observation{
			Time:    ts,
			Chamber: chamber,
			Value:   parseValue(rec[vi]),
		})
	}
	return obs, nil
}

func locateColumns(header []string, names ...string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	positions := make([]int, len(names))
	var missing []string
	for k, name := range names {
		i, ok := index[name]
		if !ok {
			missing = append(missing, strconv.Quote(name))
			continue
		}
		positions[k] = i
	}
	if len(missing) > 0 {
		return nil, failure.Wrap(failure.ErrSchema, "load", "read header",
			fmt.Sprintf("missing column(s) %s in header %q", strings.Join(missing, ", "), header), nil)
	}
	return positions, nil
}

// parseValue reads numbers when possible and keeps anything else as a label.
// Thousands separators are stripped; in comma-delimited files such values
// arrive quoted and the reader has already unquoted them.
func parseValue(raw string) frame.Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return frame.Missing()
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return frame.Number(v)
	}
	return frame.Text(s)
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r")
}
