package report

import (
	"fmt"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/testops/test-reporter/types"
)

// Accumulator collects test records for one process during a run and produces
// the finalized report. It is not safe for concurrent use; the host runner
// delivers record-producing events on a single logical sequence, so callers
// never need a lock around Add.
type Accumulator struct {
	log       log.Logger
	tool      Tool
	records   []types.ResultRecord
	summary   Summary
	index     map[string]int // test ID -> position in records
	workers   int
	observer  func(types.ResultRecord)
	finalized bool
}

// NewAccumulator creates an accumulator and stamps the run's start time.
func NewAccumulator(logger log.Logger) *Accumulator {
	if logger == nil {
		logger = log.Root()
	}
	return &Accumulator{
		log:     logger,
		index:   make(map[string]int),
		summary: Summary{Start: time.Now().UnixMilli()},
	}
}

// WithTool sets the tool identity stamped into the finalized report.
func (a *Accumulator) WithTool(tool Tool) *Accumulator {
	a.tool = tool
	return a
}

// WithObserver registers a callback invoked once per accepted record, and
// again with the merged record when a teardown failure rewrites one.
// Duplicates and malformed records never reach the observer.
func (a *Accumulator) WithObserver(fn func(types.ResultRecord)) *Accumulator {
	a.observer = fn
	return a
}

// Add appends a record and updates the summary counts. Malformed records and
// duplicate test IDs are logged and skipped; accumulation never fails the
// test run it is observing.
func (a *Accumulator) Add(rec types.ResultRecord) {
	if a.finalized {
		a.log.Warn("Record received after finalize; ignoring", "test_id", rec.TestID)
		return
	}
	if rec.TestID == "" {
		a.log.Warn("Record is missing a test ID; skipping")
		return
	}
	if _, seen := a.index[rec.TestID]; seen {
		a.log.Debug("Duplicate record for test; first terminal record wins", "test_id", rec.TestID)
		return
	}
	rec.Outcome = types.ParseOutcome(string(rec.Outcome))
	if rec.Duration < 0 {
		a.log.Warn("Record has negative duration; clamping to zero", "test_id", rec.TestID, "duration", rec.Duration)
		rec.Duration = 0
	}
	a.index[rec.TestID] = len(a.records)
	a.records = append(a.records, rec)
	a.summary.increment(rec.Outcome)
	if a.observer != nil {
		a.observer(rec)
	}
}

// MergeTeardownFailure folds a failing teardown into the record already
// committed for the test. The outcome flips to error and the teardown
// diagnostics are appended; no second record is created. When no record was
// committed yet, a fresh error record is added instead.
func (a *Accumulator) MergeTeardownFailure(testID, message, trace string) {
	if a.finalized {
		a.log.Warn("Teardown failure received after finalize; ignoring", "test_id", testID)
		return
	}
	i, ok := a.index[testID]
	if !ok {
		a.Add(types.ResultRecord{
			TestID:  testID,
			Name:    testID,
			Outcome: types.OutcomeError,
			Message: types.TruncateMessage(message, types.MessageLimit),
			Trace:   types.TruncateTrace(trace),
		})
		return
	}

	rec := &a.records[i]
	a.log.Warn("Teardown failed for committed test; merging into its record",
		"test_id", testID, "previous_outcome", rec.Outcome)
	if rec.Outcome != types.OutcomeError {
		a.summary.adjust(rec.Outcome, -1)
		a.summary.adjust(types.OutcomeError, 1)
		rec.Outcome = types.OutcomeError
	}
	if message != "" {
		merged := message
		if rec.Message != "" {
			merged = rec.Message + "; teardown: " + message
		}
		rec.Message = types.TruncateMessage(merged, types.MessageLimit)
	}
	if trace != "" {
		merged := trace
		if rec.Trace != "" {
			merged = rec.Trace + "\n" + trace
		}
		rec.Trace = types.TruncateTrace(merged)
	}
	if a.observer != nil {
		a.observer(*rec)
	}
}

// Records returns a copy of the accumulated records in completion order.
func (a *Accumulator) Records() []types.ResultRecord {
	records := make([]types.ResultRecord, len(a.records))
	copy(records, a.records)
	return records
}

// Summary returns a snapshot of the current counts.
func (a *Accumulator) Summary() Summary {
	return a.summary
}

// StartedAt returns the run start timestamp in epoch milliseconds.
func (a *Accumulator) StartedAt() int64 {
	return a.summary.Start
}

// SetWorkerCount records how many subordinate workers contributed results.
// The count is surfaced in the report's environment section.
func (a *Accumulator) SetWorkerCount(n int) {
	a.workers = n
}

// Finalize seals the run, stamps the stop time and returns the report
// snapshot. Safe to call with zero records. An internal failure degrades to a
// minimal report carrying the best-effort counts; it never propagates to the
// caller, because a reporting failure must not fail the run it observed.
func (a *Accumulator) Finalize() (rep *Report) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Report finalization failed; returning minimal report", "panic", r)
			rep = a.minimalReport(fmt.Sprint(r))
		}
	}()

	if a.finalized {
		a.log.Warn("Finalize called more than once; returning a fresh snapshot")
	}
	a.finalized = true
	if a.summary.Stop == 0 {
		a.summary.Stop = time.Now().UnixMilli()
	}

	environment := map[string]any{
		"goVersion": runtime.Version(),
		"os":        runtime.GOOS,
		"arch":      runtime.GOARCH,
	}
	if a.workers > 0 {
		environment["workers"] = a.workers
	}

	tests := make([]TestEntry, 0, len(a.records))
	for _, rec := range a.records {
		tests = append(tests, entryFromRecord(rec))
	}

	rep = &Report{
		Tool:        a.tool,
		Summary:     a.summary,
		Tests:       tests,
		Environment: environment,
		Extra: map[string]any{
			"generatedAt": time.Now().UnixMilli(),
			"durationMs":  a.summary.Stop - a.summary.Start,
		},
	}

	a.log.Info("Report finalized",
		"tests", rep.Summary.Tests,
		"passed", rep.Summary.Passed,
		"failed", rep.Summary.Failed,
		"skipped", rep.Summary.Skipped,
		"duration_ms", rep.DurationMS())
	return rep
}

// minimalReport carries whatever counts were gathered before finalization
// broke. A smaller report always beats no report.
func (a *Accumulator) minimalReport(reason string) *Report {
	summary := a.summary
	if summary.Stop == 0 {
		summary.Stop = time.Now().UnixMilli()
	}
	return &Report{
		Tool:        a.tool,
		Summary:     summary,
		Tests:       []TestEntry{},
		Environment: map[string]any{},
		Extra: map[string]any{
			"error":        "report finalization failed",
			"errorMessage": reason,
		},
	}
}
