package sinks

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/testops/test-reporter/report"
)

// ConsoleSink prints a summary table to the console after the run.
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink creates a console sink. A nil writer defaults to stdout.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSink{out: out}
}

func (s *ConsoleSink) Name() string { return "console" }

// Write renders the summary counts as a table.
func (s *ConsoleSink) Write(rep *report.Report) error {
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetTitle(fmt.Sprintf("Test Report (%s)", formatDuration(rep.DurationMS())))

	t.AppendHeader(table.Row{
		"Tests", "Passed", "Failed", "Skipped", "Error", "Pending", "Other",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Error", Align: text.AlignRight},
		{Name: "Pending", Align: text.AlignRight},
		{Name: "Other", Align: text.AlignRight},
	})

	summary := rep.Summary
	t.AppendRow(table.Row{
		summary.Tests,
		summary.Passed,
		summary.Failed,
		summary.Skipped,
		summary.Error,
		summary.Pending,
		summary.Other,
	})

	t.Render()
	return nil
}

func formatDuration(durationMS int64) string {
	return (time.Duration(durationMS) * time.Millisecond).Round(10 * time.Millisecond).String()
}
