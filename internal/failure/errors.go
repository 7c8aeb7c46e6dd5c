package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrArgument      = errors.New("argument error")
	ErrExtension     = errors.New("extension error")
	ErrNotFound      = errors.New("file not found")
	ErrRead          = errors.New("read error")
	ErrEncoding      = errors.New("encoding error")
	ErrSchema        = errors.New("schema error")
	ErrParse         = errors.New("parse error")
	ErrEmptyInput    = errors.New("empty input")
	ErrWrite         = errors.New("write error")
	ErrMissingColumn = errors.New("missing column")
	ErrDuplicate     = errors.New("duplicate observation")
	ErrConfiguration = errors.New("configuration error")
)

// Process exit statuses. Usage errors keep the historical 1/2/3 codes;
// everything raised inside the pipeline exits with ExitPipeline.
const (
	ExitOK        = 0
	ExitArgument  = 1
	ExitExtension = 2
	ExitNotFound  = 3
	ExitPipeline  = 4
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker. The marker should be one of the exported sentinel errors.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrArgument):
		return ExitArgument
	case errors.Is(err, ErrExtension):
		return ExitExtension
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case isPipeline(err):
		return ExitPipeline
	default:
		return ExitArgument
	}
}

// Kind returns a short label for the marker carried by err, or "unknown".
func Kind(err error) string {
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return marker.Error()
		}
	}
	return "unknown"
}

var markers = []error{
	ErrArgument, ErrExtension, ErrNotFound, ErrRead, ErrEncoding, ErrSchema, ErrParse,
	ErrEmptyInput, ErrWrite, ErrMissingColumn, ErrDuplicate, ErrConfiguration,
}

func isPipeline(err error) bool {
	for _, marker := range markers[3:] {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
