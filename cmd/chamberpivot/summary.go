package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"chamberpivot/internal/fileutil"
	"chamberpivot/internal/pipeline"
)

func renderSummary(report *pipeline.Report, colorize bool) string {
	style := table.StyleDefault
	if colorize {
		style = table.StyleRounded
	}

	rows := make([][]string, 0, 16)
	add := func(label, value string) { rows = append(rows, []string{label, value}) }

	add("Mode", report.Mode)
	for _, in := range report.Inputs {
		encoding := in.Encoding
		if in.Guessed {
			encoding += " (guessed)"
		}
		add("Input ("+in.Role+")", in.Path)
		add("  size", fileutil.FormatSize(in.Size))
		add("  encoding", encoding+", "+in.Delimiter+" separated")
	}
	add("Output", fmt.Sprintf("%s (%s)", report.Output.Path, report.Output.Format))
	add("  size", fileutil.FormatSize(report.Output.Size))
	add("Rows before", humanize.Comma(int64(report.RowsBefore)))
	add("Rows after", humanize.Comma(int64(report.RowsAfter)))
	add("Percent dropped", fmt.Sprintf("%.2f%%", report.LossPercent()))
	add("Columns", strings.Join(report.Columns, ", "))
	if len(report.MissingDropColumns) > 0 {
		add("Not present", strings.Join(report.MissingDropColumns, ", "))
	}
	if w := report.Warming; w != nil {
		add("Warming", fmt.Sprintf("%.2f observed, %.2f target (%s rows)", w.Observed, w.Target, humanize.Comma(int64(w.Rows))))
	}
	add("Run ID", report.RunID)

	return renderTable([]string{"Summary", ""}, rows, []columnAlignment{alignLeft, alignLeft}, style) + "\n"
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
