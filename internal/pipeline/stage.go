package pipeline

import (
	"context"
	"log/slog"
	"time"

	"chamberpivot/internal/failure"
	"chamberpivot/internal/logging"
)

// Stage names as they appear in logs.
const (
	StageLoad   = "load"
	StagePivot  = "pivot"
	StageFilter = "filter"
	StageMerge  = "merge"
	StageWrite  = "write"
)

type stageFunc func(ctx context.Context, logger *slog.Logger) error

type stage struct {
	name string
	fn   stageFunc
}

func runStage(ctx context.Context, logger *slog.Logger, name string, fn stageFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stageCtx := logging.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	start := time.Now()

	if err := fn(stageCtx, stageLogger); err != nil {
		stageLogger.Error(
			"stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_kind", failure.Kind(err)),
			logging.Error(err),
		)
		return err
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return nil
}
