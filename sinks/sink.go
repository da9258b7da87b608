// Package sinks delivers finalized reports to their destinations. Every sink
// contains its own failures: the worst outcome of a broken sink is a missing
// or partial report plus a log entry, never a failed test run.
package sinks

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/testops/test-reporter/metrics"
	"github.com/testops/test-reporter/report"
)

// Sink delivers a finalized report to one destination.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Write delivers the report. A returned error is logged by the caller
	// and never propagated further.
	Write(rep *report.Report) error
}

// Emit writes the report to every sink in order, logging failures and
// continuing. One broken destination must not silence the others.
func Emit(logger log.Logger, rep *report.Report, sinkList ...Sink) {
	for _, s := range sinkList {
		if err := s.Write(rep); err != nil {
			logger.Error("Report sink failed", "sink", s.Name(), "err", err)
			metrics.RecordSinkError(s.Name())
			continue
		}
		metrics.RecordReportWritten(s.Name())
	}
}
