package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chamberpivot/internal/failure"
	"chamberpivot/internal/fileutil"
	"chamberpivot/internal/pipeline"
)

const inputExtension = ".csv"

type outputFlags struct {
	path   string
	format string
}

func (o *outputFlags) register(cmd *cobra.Command, withPath bool) {
	if withPath {
		cmd.Flags().StringVarP(&o.path, "output", "o", "", "Output file path (default from output.path)")
	}
	cmd.Flags().StringVar(&o.format, "format", "", "Output format: csv, xlsx, or sqlite (default inferred from the output path)")
}

func newPivotCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "pivot <input.csv>",
		Short: "Pivot one export and drop incomplete rows",
		Long: `Pivot one long-form chamber export to wide form, drop the configured
chamber groups, and keep only rows where every remaining chamber has a value.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPivotArgs(cmd, ctx, args, out)
		},
	}
	out.register(cmd, true)
	return cmd
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	var dayNight string

	cmd := &cobra.Command{
		Use:   "merge <temps.csv> <setpoints.csv> [output.csv]",
		Short: "Pivot temperatures and merge set-point and day/night columns",
		Long: `Pivot the temperature and set-point exports, derive the set-point
differential, attach the day/night label, and keep only rows where the anchor
chamber has a value. The output defaults to out.csv.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMergeArgs(cmd, ctx, args, out, dayNight)
		},
	}
	out.register(cmd, false)
	cmd.Flags().StringVar(&dayNight, "day-night", "", "Day/night export path (default from merge.day_night_path)")
	return cmd
}

const mergeUsage = "chamberpivot merge <temps.csv> <setpoints.csv> [output.csv]"

func runPivotArgs(cmd *cobra.Command, ctx *commandContext, args []string, out outputFlags) error {
	if len(args) < 1 {
		return failure.Wrap(failure.ErrArgument, "", "", "no input file given; usage: chamberpivot pivot <input.csv>", nil)
	}
	if len(args) > 1 {
		return failure.Wrap(failure.ErrArgument, "", "", fmt.Sprintf("expected 1 input file, got %d", len(args)), nil)
	}
	if err := checkInputs(args[0]); err != nil {
		return err
	}
	return runPipeline(cmd, ctx, pipeline.Request{
		TempsPath:  args[0],
		OutputPath: out.path,
	}, out.format)
}

func runMergeArgs(cmd *cobra.Command, ctx *commandContext, args []string, out outputFlags, dayNight string) error {
	switch len(args) {
	case 0:
		return failure.Wrap(failure.ErrArgument, "", "", "no temperature file given; usage: "+mergeUsage, nil)
	case 1:
		return failure.Wrap(failure.ErrArgument, "", "", "no set-point file given; usage: "+mergeUsage, nil)
	}
	if len(args) > 3 {
		return failure.Wrap(failure.ErrArgument, "", "", fmt.Sprintf("expected at most 3 arguments, got %d", len(args)), nil)
	}
	if err := checkInputs(args[0], args[1]); err != nil {
		return err
	}
	output := out.path
	if len(args) == 3 {
		output = args[2]
	}
	return runPipeline(cmd, ctx, pipeline.Request{
		TempsPath:     args[0],
		SetpointsPath: args[1],
		DayNightPath:  dayNight,
		OutputPath:    output,
	}, out.format)
}

// checkInputs validates every extension before checking existence so a bad
// extension is reported even when the file is also missing.
func checkInputs(paths ...string) error {
	for _, path := range paths {
		if !strings.EqualFold(filepath.Ext(path), inputExtension) {
			return failure.Wrap(failure.ErrExtension, "", path, "input must be a "+inputExtension+" file", nil)
		}
	}
	for _, path := range paths {
		if !fileutil.Exists(path) {
			return failure.Wrap(failure.ErrNotFound, "", path, "no such file", nil)
		}
	}
	return nil
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, req pipeline.Request, format string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if format = strings.TrimSpace(format); format != "" {
		runCfg := *cfg
		runCfg.Output.Format = strings.ToLower(format)
		if err := runCfg.Validate(); err != nil {
			return fmt.Errorf("--format: %w", err)
		}
		cfg = &runCfg
	}

	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	report, err := pipeline.Run(cmd.Context(), cfg, req, logger)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprint(stdout, renderSummary(report, shouldColorize(stdout)))
	return nil
}
