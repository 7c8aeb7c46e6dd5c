package export

import (
	"fmt"
	"os"

	"chamberpivot/internal/config"
	"chamberpivot/internal/failure"
	"chamberpivot/internal/fileutil"
	"chamberpivot/internal/frame"
)

// TimestampLayout renders index values in every output format.
const TimestampLayout = "2006-01-02 15:04:05"

// Options controls how a table is written.
type Options struct {
	// Format is "csv", "xlsx", or "sqlite"; empty infers from the path.
	Format      string
	IndexColumn string
	Sheet       string
	Table       string
	Lock        bool
}

// OptionsFromConfig builds writer options from configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Format:      cfg.Output.Format,
		IndexColumn: cfg.Input.TimestampColumn,
		Sheet:       cfg.Output.Sheet,
		Table:       cfg.Output.Table,
		Lock:        cfg.Output.Lock,
	}
}

// Writer serializes a wide table to a file path.
type Writer interface {
	Write(path string, w *frame.Wide) error
}

// Result describes a completed write.
type Result struct {
	Path   string
	Format string
	Size   int64
	Rows   int
}

// Write persists the table at path in the configured format.
func Write(path string, w *frame.Wide, opts Options) (Result, error) {
	format := config.ResolveFormat(opts.Format, path)
	writer, err := writerFor(format, opts)
	if err != nil {
		return Result{}, err
	}

	write := func() error { return writer.Write(path, w) }
	if opts.Lock {
		inner := write
		write = func() error { return fileutil.WithLock(path, inner) }
	}
	if err := write(); err != nil {
		return Result{}, failure.Wrap(failure.ErrWrite, "write", path, format, err)
	}

	size, err := fileutil.Size(path)
	if err != nil {
		return Result{}, failure.Wrap(failure.ErrWrite, "write", path, "stat output", err)
	}
	return Result{Path: path, Format: format, Size: size, Rows: w.Len()}, nil
}

func writerFor(format string, opts Options) (Writer, error) {
	index := opts.IndexColumn
	if index == "" {
		index = "timestamp"
	}
	switch format {
	case config.FormatCSV:
		return CSVWriter{IndexColumn: index}, nil
	case config.FormatXLSX:
		return XLSXWriter{IndexColumn: index, Sheet: opts.Sheet}, nil
	case config.FormatSQLite:
		return SQLiteWriter{IndexColumn: index, Table: opts.Table}, nil
	default:
		return nil, failure.Wrap(failure.ErrConfiguration, "write", "", fmt.Sprintf("unsupported output format %q", format), nil)
	}
}

// commitFile renames a fully written temp file into place.
func commitFile(tmp, path string) error {
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
