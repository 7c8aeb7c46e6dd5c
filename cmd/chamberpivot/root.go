package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chamberpivot/internal/failure"
)

func newRootCommand() *cobra.Command {
	var flags globalFlags
	var out outputFlags
	var dayNight string

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:   "chamberpivot [input.csv | temps.csv setpoints.csv [output.csv]]",
		Short: "Pivot chamber temperature exports to wide form",
		Long: `Pivot chamber temperature exports to wide form.

With one file this behaves like "chamberpivot pivot"; with two or three it
behaves like "chamberpivot merge".`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
				return failure.Wrap(failure.ErrArgument, "", "", "no input file given", nil)
			case 1:
				return runPivotArgs(cmd, ctx, args, out)
			default:
				return runMergeArgs(cmd, ctx, args, out, dayNight)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format override (console, json)")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")

	out.register(rootCmd, true)
	rootCmd.Flags().StringVar(&dayNight, "day-night", "", "Day/night export path when merging (default from merge.day_night_path)")

	rootCmd.AddCommand(newPivotCommand(ctx))
	rootCmd.AddCommand(newMergeCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
