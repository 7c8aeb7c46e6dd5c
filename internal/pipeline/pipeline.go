package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chamberpivot/internal/config"
	"chamberpivot/internal/export"
	"chamberpivot/internal/failure"
	"chamberpivot/internal/frame"
	"chamberpivot/internal/ingest"
	"chamberpivot/internal/logging"
	"chamberpivot/internal/metrics"
)

// Run modes.
const (
	ModeSingle = "pivot"
	ModeMerge  = "merge"
)

// Input roles as they appear in reports.
const (
	RoleTemps     = "temps"
	RoleSetpoints = "setpoints"
	RoleDayNight  = "day_night"
)

// Request names the files a run reads and writes. An empty SetpointsPath
// selects single-file mode.
type Request struct {
	TempsPath     string
	SetpointsPath string
	// DayNightPath overrides merge.day_night_path when set.
	DayNightPath string
	// OutputPath overrides output.path when set.
	OutputPath string
}

// Mode reports which pipeline the request selects.
func (r Request) Mode() string {
	if r.SetpointsPath != "" {
		return ModeMerge
	}
	return ModeSingle
}

// InputStat describes one loaded input file.
type InputStat struct {
	Role         string
	Path         string
	Size         int64
	Encoding     string
	Guessed      bool
	Delimiter    string
	Observations int
}

// Report summarizes a completed run.
type Report struct {
	RunID              string
	Mode               string
	Inputs             []InputStat
	Output             export.Result
	Columns            []string
	RowsBefore         int
	RowsAfter          int
	LossFraction       float64
	MissingDropColumns []string
	Warming            *WarmingCheck
	Started            time.Time
	Duration           time.Duration
}

// LossPercent is the share of rows dropped, in [0, 100] with two decimals.
func (r *Report) LossPercent() float64 {
	return frame.Round(r.LossFraction*100, 2)
}

// InputBytes totals the sizes of every input file.
func (r *Report) InputBytes() int64 {
	var total int64
	for _, in := range r.Inputs {
		total += in.Size
	}
	return total
}

// Input returns the stat for role, if that input was loaded.
func (r *Report) Input(role string) (InputStat, bool) {
	for _, in := range r.Inputs {
		if in.Role == role {
			return in, true
		}
	}
	return InputStat{}, false
}

// Run executes the pipeline described by req. Nothing is written unless every
// input loads and every transformation succeeds.
func Run(ctx context.Context, cfg *config.Config, req Request, logger *slog.Logger) (*Report, error) {
	if cfg == nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "pipeline", "", "configuration unavailable", nil)
	}
	if req.TempsPath == "" {
		return nil, failure.Wrap(failure.ErrArgument, "pipeline", "", "no input file", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Mode:    req.Mode(),
		Started: time.Now(),
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger = logging.NewComponentLogger(logger, "pipeline")
	logging.WithContext(ctx, logger).Info(
		"run started",
		logging.String("mode", report.Mode),
		logging.String("input", req.TempsPath),
	)

	r := &runner{cfg: cfg, req: req, report: report}
	if err := r.execute(ctx, logger); err != nil {
		return nil, err
	}
	report.Duration = time.Since(report.Started)

	if path := cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path, report.metricsRun()); err != nil {
			logging.WithContext(ctx, logger).Warn(
				"metrics export failed",
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
	return report, nil
}

type runner struct {
	cfg    *config.Config
	req    Request
	report *Report

	temps, setpoints, dayNight *ingest.Source
	primary, aux, labels       *frame.Wide
	result                     *frame.Wide
}

func (r *runner) execute(ctx context.Context, logger *slog.Logger) error {
	stages := []stage{
		{StageLoad, r.load},
		{StagePivot, r.pivot},
		{StageFilter, r.filter},
	}
	if r.report.Mode == ModeMerge {
		stages = append(stages, stage{StageMerge, r.merge})
	}
	stages = append(stages, stage{StageWrite, r.write})

	for _, st := range stages {
		if err := runStage(ctx, logger, st.name, st.fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) load(_ context.Context, logger *slog.Logger) error {
	opts := ingest.OptionsFromConfig(r.cfg.Input)

	var err error
	if r.temps, err = r.loadOne(logger, RoleTemps, r.req.TempsPath, opts); err != nil {
		return err
	}
	if r.report.Mode != ModeMerge {
		return nil
	}
	if r.setpoints, err = r.loadOne(logger, RoleSetpoints, r.req.SetpointsPath, opts); err != nil {
		return err
	}
	dayNightPath := r.req.DayNightPath
	if dayNightPath == "" {
		dayNightPath = r.cfg.Merge.DayNightPath
	}
	r.dayNight, err = r.loadOne(logger, RoleDayNight, dayNightPath, opts.WithEncoding(r.cfg.Merge.DayNightEncoding))
	return err
}

func (r *runner) loadOne(logger *slog.Logger, role, path string, opts ingest.Options) (*ingest.Source, error) {
	src, err := ingest.Load(path, opts)
	if err != nil {
		return nil, err
	}
	stat := InputStat{
		Role:         role,
		Path:         src.Path,
		Size:         src.Size,
		Encoding:     src.Encoding,
		Guessed:      src.Guessed,
		Delimiter:    src.DelimiterName(),
		Observations: len(src.Observations),
	}
	r.report.Inputs = append(r.report.Inputs, stat)

	if src.Guessed {
		logger.Warn(
			"encoding guessed",
			logging.String("role", role),
			logging.String("path", path),
			logging.String("encoding", src.Encoding),
		)
	}
	logger.Info(
		"input loaded",
		logging.String("role", role),
		logging.String("path", path),
		logging.Int64("bytes", src.Size),
		logging.String("encoding", src.Encoding),
		logging.String("delimiter", stat.Delimiter),
		logging.Int("observations", stat.Observations),
	)
	return src, nil
}

func (r *runner) pivot(_ context.Context, logger *slog.Logger) error {
	policy, err := frame.ParseDuplicatePolicy(r.cfg.Pivot.Duplicates)
	if err != nil {
		return err
	}

	pivotOne := func(role string, src *ingest.Source) (*frame.Wide, error) {
		w, err := frame.Pivot(src.Observations, policy)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
		logger.Info(
			"table pivoted",
			logging.String("role", role),
			logging.Int("rows", w.Len()),
			logging.Int("columns", len(w.Columns)),
		)
		return w, nil
	}

	if r.primary, err = pivotOne(RoleTemps, r.temps); err != nil {
		return err
	}
	if r.report.Mode != ModeMerge {
		return nil
	}
	if r.aux, err = pivotOne(RoleSetpoints, r.setpoints); err != nil {
		return err
	}
	r.labels, err = pivotOne(RoleDayNight, r.dayNight)
	return err
}

func (r *runner) filter(_ context.Context, logger *slog.Logger) error {
	trimmed, missing := r.primary.DropColumns(r.cfg.DropColumns()...)
	r.report.MissingDropColumns = missing
	if len(missing) > 0 {
		logger.Warn("drop columns not present", logging.Strings("columns", missing))
	}
	r.primary = trimmed

	if r.report.Mode == ModeMerge {
		return nil
	}
	filtered := trimmed.DropIncomplete()
	if err := r.recordLoss(logger, trimmed.Len(), filtered.Len()); err != nil {
		return err
	}
	r.result = filtered
	return nil
}

func (r *runner) merge(_ context.Context, logger *slog.Logger) error {
	m := r.cfg.Merge
	derived, err := r.aux.Derive(m.DerivedColumn, m.SetpointMinuend, m.SetpointSubtrahend, m.DerivedPrecision)
	if err != nil {
		return fmt.Errorf("%s: %w", r.setpoints.Path, err)
	}
	derived, err = derived.Select(m.DerivedColumn)
	if err != nil {
		return err
	}

	joined, err := frame.LeftJoin(r.primary, derived)
	if err != nil {
		return err
	}
	joined, err = frame.LeftJoin(joined, r.labels.Coalesce(m.DayNightColumn))
	if err != nil {
		return err
	}

	anchored, err := joined.DropMissing(m.AnchorColumn)
	if err != nil {
		return err
	}
	if err := r.recordLoss(logger, joined.Len(), anchored.Len()); err != nil {
		return err
	}
	r.result = anchored
	return nil
}

func (r *runner) recordLoss(logger *slog.Logger, before, after int) error {
	loss, err := frame.LossFraction(before, after)
	if err != nil {
		return err
	}
	r.report.RowsBefore = before
	r.report.RowsAfter = after
	r.report.LossFraction = loss
	logger.Info(
		"incomplete rows dropped",
		logging.Int("rows_before", before),
		logging.Int("rows_after", after),
		logging.Float64("percent_dropped", r.report.LossPercent()),
	)
	return nil
}

func (r *runner) write(_ context.Context, logger *slog.Logger) error {
	table := r.result
	if check, ok := checkWarming(table, r.cfg.Chambers.Ambient, r.cfg.Chambers.Symmetric, r.cfg.Chambers.SymmetricWarming); ok {
		r.report.Warming = &check
		logger.Info(
			"warming check",
			logging.Float64("observed", check.Observed),
			logging.Float64("target", check.Target),
			logging.Int("rows", check.Rows),
		)
	}

	path := r.req.OutputPath
	if path == "" {
		path = r.cfg.Output.Path
	}
	result, err := export.Write(path, table, export.OptionsFromConfig(r.cfg))
	if err != nil {
		return err
	}
	r.report.Output = result
	r.report.Columns = append([]string(nil), table.Columns...)
	logger.Info(
		"output written",
		logging.String("path", result.Path),
		logging.String("format", result.Format),
		logging.Int64("bytes", result.Size),
		logging.Int("rows", result.Rows),
	)
	return nil
}

func (r *Report) metricsRun() metrics.Run {
	return metrics.Run{
		Mode:        r.Mode,
		RowsBefore:  r.RowsBefore,
		RowsAfter:   r.RowsAfter,
		LossRatio:   r.LossFraction,
		InputBytes:  r.InputBytes(),
		OutputBytes: r.Output.Size,
		Duration:    r.Duration,
		Finished:    r.Started.Add(r.Duration),
	}
}
